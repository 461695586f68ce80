package logx

import "go.uber.org/zap"

// New bikin logger produksi (JSON, level info) dengan field service tetap.
func New(service string) (*zap.SugaredLogger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return l.Sugar().With("service", service), nil
}

// Nop untuk test.
func Nop() *zap.SugaredLogger { return zap.NewNop().Sugar() }
