package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 按名称提供 ChatModel 实例，name 对应配置里的 provider，
// 传空串时使用默认 provider。工作流层只依赖该接口，不关心底层适配器实现。
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}
