package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/eventmetrics/internal/config"
)

type fakeMsg struct {
	data   []byte
	acked  int
	termed int
}

func (m *fakeMsg) Data() []byte    { return m.data }
func (m *fakeMsg) Subject() string { return "keycloak.events.test" }
func (m *fakeMsg) Ack() error      { m.acked++; return nil }
func (m *fakeMsg) Term() error     { m.termed++; return nil }

func newTestConsumer(h Handler) *Consumer {
	return NewConsumer(config.NATSConfig{}, NewDispatcher(h, quietLogger()), quietLogger())
}

func TestConsumerAcksRecordedEvents(t *testing.T) {
	h := &recordingHandler{}
	c := newTestConsumer(h)

	user := &fakeMsg{data: []byte(`{"type":"LOGIN"}`)}
	c.HandleUser(user)
	admin := &fakeMsg{data: []byte(`{"operationType":"CREATE","resourceType":"GROUP"}`)}
	c.HandleAdmin(admin)

	assert.Equal(t, 1, user.acked)
	assert.Zero(t, user.termed)
	assert.Equal(t, 1, admin.acked)
	require.Len(t, h.users, 1)
	require.Len(t, h.admins, 1)
}

func TestConsumerTerminatesBadMessages(t *testing.T) {
	h := &recordingHandler{}
	c := newTestConsumer(h)

	garbage := &fakeMsg{data: []byte(`nope`)}
	c.HandleUser(garbage)
	rejected := &fakeMsg{data: []byte(`{"operationType":"CREATE"}`)}
	c.HandleAdmin(rejected)

	assert.Equal(t, 1, garbage.termed)
	assert.Zero(t, garbage.acked)
	assert.Equal(t, 1, rejected.termed)
	assert.Zero(t, rejected.acked)
	assert.Empty(t, h.users)
	assert.Empty(t, h.admins)
}

func TestConsumerStopWithoutStart(t *testing.T) {
	c := newTestConsumer(&recordingHandler{})
	assert.NotPanics(t, func() {
		c.Stop()
		c.Stop()
	})
}
