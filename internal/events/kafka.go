package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink отправляет события в топик Kafka. Запись идет в фоне, мутация
// не ждет брокера.
type KafkaSink struct {
	w       messageWriter
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewKafkaSink(addr, topic string, batch int) *KafkaSink {
	return newKafkaSink(&kafka.Writer{
		Addr:      kafka.TCP(addr),
		Topic:     topic,
		BatchSize: batch,
	})
}

func newKafkaSink(w messageWriter) *KafkaSink {
	return &KafkaSink{w: w, timeout: 10 * time.Second}
}

func (k *KafkaSink) Publish(_ context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Errorf("[events] failed to marshal event %s for entry %s: %v", e.Type, e.EntryID, err)
		return
	}

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
		defer cancel()
		err := k.w.WriteMessages(ctx, kafka.Message{Key: []byte(e.EntryID), Value: payload})
		if err != nil {
			log.Errorf("[events] failed to write event to Kafka: %v", err)
			return
		}
		log.Debugf("[events] %s sent to Kafka entry_id:%s", e.Type, e.EntryID)
	}()
}

// Close дожидается отправки начатых записей и закрывает writer.
func (k *KafkaSink) Close() error {
	k.wg.Wait()
	return k.w.Close()
}

// CreateTopic создает топик, если брокер это позволяет.
func CreateTopic(broker, topic string) error {
	conn, err := kafka.DialContext(context.Background(), "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
}
