package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/floai/flo-assistant/internal/ai"
)

type fakeStore struct {
	sessions  map[string]*Session
	upsertErr error
	appendErr error

	intents []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]*Session{}}
}

func (f *fakeStore) UpsertSession(_ context.Context, sessionID, intent string) (*Session, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}

	f.intents = append(f.intents, intent)

	session, ok := f.sessions[sessionID]
	if !ok {
		session = &Session{ID: "row-" + sessionID, SessionID: sessionID}
		f.sessions[sessionID] = session
	}
	session.Intent = intent

	return session, nil
}

func (f *fakeStore) AppendMessage(_ context.Context, sessionID string, msg Message) error {
	if f.appendErr != nil {
		return f.appendErr
	}

	session, ok := f.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	session.Messages = append(session.Messages, msg)

	return nil
}

func (f *fakeStore) FindSession(_ context.Context, sessionID string) (*Session, error) {
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return session, nil
}

func (f *fakeStore) ListSessions(_ context.Context, _ string, offset, limit int) ([]*Session, int, error) {
	all := make([]*Session, 0, len(f.sessions))
	for _, session := range f.sessions {
		all = append(all, session)
	}

	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end], len(all), nil
}

func TestRecordStoresBothTurnMessages(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	tracker := NewTracker(store, zap.NewNop())

	err := tracker.Record(context.Background(), "session-1", ai.IntentFun, "hello", "hi there", nil)
	require.NoError(t, err)

	session, err := tracker.Find(context.Background(), "session-1")
	require.NoError(t, err)

	require.Len(t, session.Messages, 2)
	assert.Equal(t, RoleUser, session.Messages[0].Role)
	assert.Equal(t, "hello", session.Messages[0].Content)
	assert.Nil(t, session.Messages[0].Metadata)
	assert.Equal(t, RoleAssistant, session.Messages[1].Role)
	assert.Equal(t, "hi there", session.Messages[1].Content)
	assert.Equal(t, "fun", session.Intent)
}

func TestRecordAttachesMatchMetadata(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	tracker := NewTracker(store, nil)

	match := &ai.MatchResult{MatchingRate: 85, Analysis: "solid fit", Strengths: []string{"go"}}
	err := tracker.Record(context.Background(), "session-1", ai.IntentHire, "job description", "you match", match)
	require.NoError(t, err)

	session, err := tracker.Find(context.Background(), "session-1")
	require.NoError(t, err)

	metadata := session.Messages[1].Metadata
	require.NotNil(t, metadata)
	assert.Equal(t, 85.0, metadata["matchingRate"])
	assert.Equal(t, "solid fit", metadata["analysis"])

	rate, ok := session.JobMatchRate()
	require.True(t, ok)
	assert.Equal(t, 85.0, rate)
}

func TestRecordUpdatesIntentMidConversation(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	tracker := NewTracker(store, nil)

	require.NoError(t, tracker.Record(context.Background(), "session-1", ai.IntentFun, "hi", "hello", nil))
	require.NoError(t, tracker.Record(context.Background(), "session-1", ai.IntentHire, "job offer", "nice", nil))

	session, err := tracker.Find(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, "hire", session.Intent)
	assert.Equal(t, []string{"fun", "hire"}, store.intents)
	assert.Len(t, session.Messages, 4)
}

func TestRecordPropagatesStoreFailures(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.upsertErr = errors.New("disk full")

	tracker := NewTracker(store, nil)
	err := tracker.Record(context.Background(), "session-1", ai.IntentFun, "hi", "hello", nil)
	assert.Error(t, err)
}

func TestFindUnknownSession(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(newFakeStore(), nil)

	_, err := tracker.Find(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNormalizesPaging(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	tracker := NewTracker(store, nil)
	require.NoError(t, tracker.Record(context.Background(), "session-1", ai.IntentFun, "hi", "hello", nil))

	sessions, total, err := tracker.List(context.Background(), "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, sessions, 1)
}

func TestSessionDuration(t *testing.T) {
	t.Parallel()

	session := &Session{}
	assert.Zero(t, session.Duration())

	base := session.CreatedAt
	session.Messages = []Message{
		{CreatedAt: base},
		{CreatedAt: base.Add(90 * time.Second)},
	}
	assert.Equal(t, float64(90), session.Duration().Seconds())
}
