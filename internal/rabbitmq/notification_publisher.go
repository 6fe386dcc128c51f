package rabbitmq

import "github.com/streadway/amqp"

// NotificationPublisher публикует задания рассылки об обновлении курса
// в обменник уведомлений. Реализует интерфейс Publisher триггера уведомлений.
type NotificationPublisher struct {
	ch *amqp.Channel
}

// NewNotificationPublisher создает издателя поверх открытого канала.
func NewNotificationPublisher(ch *amqp.Channel) *NotificationPublisher {
	return &NotificationPublisher{ch: ch}
}

// Publish отправляет задание в очередь рассылки.
func (p *NotificationPublisher) Publish(message any) error {
	return PublishMessage(p.ch, Exchange, RoutingKeyCourseUpdates, message)
}
