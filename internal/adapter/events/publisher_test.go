package events

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualify(t *testing.T) {
	assert.Equal(t, "post.created", Qualify("", SubjectPostCreated))
	assert.Equal(t, "locom.post.created", Qualify("locom", SubjectPostCreated))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(SubjectPostCreated, 1))
	require.NoError(t, r.Publish(SubjectCommentCreated, 2))

	assert.Equal(t, []string{SubjectPostCreated, SubjectCommentCreated}, r.Subjects())
}

func TestRecorder_ConcurrentPublish(t *testing.T) {
	r := &Recorder{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, r.Publish(SubjectMunicipalitySynced, i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.Subjects(), 50)
}

func TestLocalBus(t *testing.T) {
	bus := NewLocalBus()

	var got []map[string]string
	unsubscribe, err := bus.Subscribe(SubjectPostCreated, func(data []byte) {
		var payload map[string]string
		require.NoError(t, json.Unmarshal(data, &payload))
		got = append(got, payload)
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(SubjectPostCreated, map[string]string{"id": "1"}))
	require.NoError(t, bus.Publish(SubjectPostDeleted, map[string]string{"id": "1"}))

	unsubscribe()
	require.NoError(t, bus.Publish(SubjectPostCreated, map[string]string{"id": "2"}))

	assert.Equal(t, []map[string]string{{"id": "1"}}, got)
}

func TestLocalBus_MarshalError(t *testing.T) {
	bus := NewLocalBus()
	assert.Error(t, bus.Publish(SubjectPostCreated, make(chan int)))
}
