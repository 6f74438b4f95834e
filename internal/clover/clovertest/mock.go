// Package clovertest provides a testify mock of clover.Gateway.
package clovertest

import (
	"context"

	"clover-print-diag/internal/clover"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

var _ clover.Gateway = (*MockGateway)(nil)

func (m *MockGateway) ListDevices(ctx context.Context) ([]clover.Device, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clover.Device), args.Error(1)
}

func (m *MockGateway) ListOrderTypes(ctx context.Context) ([]clover.OrderType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clover.OrderType), args.Error(1)
}

func (m *MockGateway) ListItems(ctx context.Context) ([]clover.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clover.Item), args.Error(1)
}

func (m *MockGateway) CreateItem(ctx context.Context, in clover.ItemInput) (*clover.Item, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clover.Item), args.Error(1)
}

func (m *MockGateway) ListEmployees(ctx context.Context) ([]clover.Employee, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clover.Employee), args.Error(1)
}

func (m *MockGateway) ListTenders(ctx context.Context) ([]clover.Tender, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clover.Tender), args.Error(1)
}

func (m *MockGateway) CreateOrder(ctx context.Context, in clover.OrderInput) (*clover.Order, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clover.Order), args.Error(1)
}

func (m *MockGateway) AddLineItem(ctx context.Context, orderID, itemID string, quantity int) error {
	args := m.Called(ctx, orderID, itemID, quantity)
	return args.Error(0)
}

func (m *MockGateway) LockOrder(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockGateway) CreatePayment(ctx context.Context, orderID string, in clover.PaymentInput) (*clover.Payment, error) {
	args := m.Called(ctx, orderID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clover.Payment), args.Error(1)
}

func (m *MockGateway) CreatePrintEvent(ctx context.Context, req clover.PrintRequest) (*clover.PrintEvent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clover.PrintEvent), args.Error(1)
}

func (m *MockGateway) GetPrintEvent(ctx context.Context, eventID string) (*clover.PrintEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clover.PrintEvent), args.Error(1)
}

func (m *MockGateway) GetOrder(ctx context.Context, orderID string, expandLineItems bool) (*clover.Order, error) {
	args := m.Called(ctx, orderID, expandLineItems)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clover.Order), args.Error(1)
}

func (m *MockGateway) ListOrders(ctx context.Context, limit int) ([]clover.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clover.Order), args.Error(1)
}
