package memory

import (
	"context"
	"sync"
)

type txKey struct{}

// TxManager выполняет функции последовательно, имитируя сериализуемые транзакции.
// Откат не поддерживается: изменения, сделанные до ошибки, остаются.
type TxManager struct {
	mu sync.Mutex
}

// NewTxManager создает менеджер транзакций для хранилища в памяти
func NewTxManager() *TxManager {
	return &TxManager{}
}

// Do выполняет fn под общей блокировкой
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoSerializable выполняет fn под общей блокировкой
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoReadOnly выполняет fn под общей блокировкой
func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	// Вложенный вызов уже держит блокировку
	if ctx.Value(txKey{}) == m {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, m))
}
