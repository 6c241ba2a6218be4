package rabbitmq_common

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultReconnectInterval = 10 * time.Second

// ConnectionManager держит одно соединение с RabbitMQ на весь сервис
// и восстанавливает его в фоне после обрыва.
type ConnectionManager struct {
	cfg               Config
	reconnectInterval time.Duration
	dial              func(url string) (*amqp.Connection, error)

	mutex      sync.RWMutex
	connection *amqp.Connection
	done       chan struct{}
	closeOnce  sync.Once

	Logger Logger
}

// NewConnectionManager подключается к брокеру и запускает мониторинг соединения.
func NewConnectionManager(cfg Config, reconnectInterval time.Duration, logger Logger) (*ConnectionManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewNoopLogger()
	}
	if reconnectInterval <= 0 {
		reconnectInterval = defaultReconnectInterval
	}

	m := &ConnectionManager{
		cfg:               cfg,
		reconnectInterval: reconnectInterval,
		dial:              amqp.Dial,
		done:              make(chan struct{}),
		Logger:            logger,
	}

	if _, err := m.getConnection(); err != nil {
		logger.Error(err, "Initial connection failed")
		return nil, fmt.Errorf("initial connection failed: %w", err)
	}

	go m.watch()
	return m, nil
}

// URL возвращает адрес брокера
func (m *ConnectionManager) URL() string {
	return m.cfg.URL
}

func (m *ConnectionManager) getConnection() (*amqp.Connection, error) {
	m.mutex.RLock()
	conn := m.connection
	m.mutex.RUnlock()
	if conn != nil && !conn.IsClosed() {
		return conn, nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Другая горутина могла переподключиться, пока мы ждали блокировку
	if m.connection != nil && !m.connection.IsClosed() {
		return m.connection, nil
	}

	m.Logger.Debug("ConnectionManager: connecting")
	conn, err := m.dial(m.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("ConnectionManager: failed to dial RabbitMQ: %w", err)
	}
	m.connection = conn
	m.Logger.Info("ConnectionManager: connected")
	return conn, nil
}

// GetChannel открывает новый канал в общем соединении
func (m *ConnectionManager) GetChannel() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := m.getConnection()
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return conn, nil, fmt.Errorf("ConnectionManager: failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

func (m *ConnectionManager) watch() {
	ticker := time.NewTicker(m.reconnectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
		}

		m.mutex.RLock()
		lost := m.connection != nil && m.connection.IsClosed()
		m.mutex.RUnlock()
		if !lost {
			continue
		}

		m.Logger.Warn("ConnectionManager: connection lost, reconnecting")
		if _, err := m.getConnection(); err != nil {
			m.Logger.Error(err, "ConnectionManager: reconnect failed")
		}
	}
}

// Close останавливает мониторинг и закрывает соединение
func (m *ConnectionManager) Close() error {
	m.closeOnce.Do(func() { close(m.done) })

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.connection == nil || m.connection.IsClosed() {
		m.Logger.Debug("ConnectionManager: connection already closed")
		return nil
	}
	if err := m.connection.Close(); err != nil {
		m.Logger.Error(err, "ConnectionManager: failed to close connection")
		return err
	}
	m.Logger.Info("ConnectionManager: connection closed")
	return nil
}
