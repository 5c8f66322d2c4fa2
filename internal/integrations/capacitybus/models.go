package capacitybus

// Message инвалидация ключа лимита в кэше
// Origin id инстанса-отправителя, свои сообщения пропускаются
type Message struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
}
