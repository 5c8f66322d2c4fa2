package capacitybus

import "errors"

var (
	// ErrConnect возвращается, когда Redis недоступен при старте
	ErrConnect = errors.New("capacitybus: failed to connect to redis")

	// ErrPublish возвращается при ошибке публикации
	ErrPublish = errors.New("capacitybus: failed to publish invalidation")
)
