package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
)

// FakeGateway accepts every push unless Err is set. Checkout ids are
// ws_CO_1, ws_CO_2 and so on.
type FakeGateway struct {
	mu       sync.Mutex
	Err      error
	Requests []*contracts.PushRequest
}

func (g *FakeGateway) InitiatePush(_ context.Context, req *contracts.PushRequest) (*contracts.PushResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Requests = append(g.Requests, req)
	if g.Err != nil {
		return nil, g.Err
	}
	n := len(g.Requests)
	return &contracts.PushResponse{
		MerchantRequestID: fmt.Sprintf("mr-%d", n),
		CheckoutRequestID: fmt.Sprintf("ws_CO_%d", n),
		ResponseCode:      "0",
		ResponseDesc:      "Success. Request accepted for processing",
		CustomerMessage:   "Success. Request accepted for processing",
	}, nil
}

// Calls returns the number of pushes attempted.
func (g *FakeGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Requests)
}
