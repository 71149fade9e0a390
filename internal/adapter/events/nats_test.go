package events

import (
	"context"
	"errors"
	"testing"

	"bikemarket/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
	drained  bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestPublish(t *testing.T) {
	fc := &fakeConn{}
	p := newPublisher(fc, "bikemarket", zap.NewNop())

	err := p.Publish(context.Background(), domain.SubjectListingDeleted, map[string]int64{"id": 7})
	require.NoError(t, err)
	assert.Equal(t, []string{"bikemarket.listing.deleted"}, fc.subjects)
	assert.JSONEq(t, `{"id":7}`, string(fc.payloads[0]))

	require.NoError(t, p.Close())
	assert.True(t, fc.drained)
}

func TestPublish_NoPrefix(t *testing.T) {
	fc := &fakeConn{}
	p := newPublisher(fc, "", zap.NewNop())
	require.NoError(t, p.Publish(context.Background(), "message.sent", struct{}{}))
	assert.Equal(t, []string{"message.sent"}, fc.subjects)
}

func TestPublish_Errors(t *testing.T) {
	fc := &fakeConn{err: errors.New("nats: connection closed")}
	p := newPublisher(fc, "x", zap.NewNop())

	err := p.Publish(context.Background(), "listing.created", struct{}{})
	assert.ErrorContains(t, err, "publish x.listing.created")

	err = p.Publish(context.Background(), "listing.created", make(chan int))
	assert.ErrorContains(t, err, "marshal")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, "listing.created", struct{}{}), context.Canceled)
}
