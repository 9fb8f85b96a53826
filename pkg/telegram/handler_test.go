package telegram

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dskvich/networker-bot/pkg/domain"
)

type sentMessage struct {
	chatID    int64
	messageID int
	text      string
	keyboard  *domain.Keyboard
}

type fakeMessenger struct {
	mu        sync.Mutex
	sent      []sentMessage
	edited    []sentMessage
	answered  []string
	editErr   error
	fileData  string
	openedIDs []string
}

func (f *fakeMessenger) SendMessage(_ context.Context, chatID int64, text string, keyboard *domain.Keyboard) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	return len(f.sent), nil
}

func (f *fakeMessenger) EditMessage(_ context.Context, chatID int64, messageID int, text string, keyboard *domain.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edited = append(f.edited, sentMessage{chatID: chatID, messageID: messageID, text: text, keyboard: keyboard})
	return nil
}

func (f *fakeMessenger) AnswerCallback(_ context.Context, callbackQueryID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, callbackQueryID)
}

func (f *fakeMessenger) OpenFile(_ context.Context, fileID string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openedIDs = append(f.openedIDs, fileID)
	return io.NopCloser(strings.NewReader(f.fileData)), nil
}

type fakePipeline struct {
	mu          sync.Mutex
	submissions []domain.Submission
	process     func(sub domain.Submission)
}

func (f *fakePipeline) Process(_ context.Context, sub domain.Submission) domain.Outcome {
	f.mu.Lock()
	f.submissions = append(f.submissions, sub)
	f.mu.Unlock()

	if f.process != nil {
		f.process(sub)
	}
	return domain.Outcome{SubmissionID: sub.ID, Status: domain.OutcomeSaved}
}

type fakeStates struct {
	mu    sync.Mutex
	state map[int64]domain.State
}

func newFakeStates() *fakeStates {
	return &fakeStates{state: make(map[int64]domain.State)}
}

func (f *fakeStates) Save(userID int64, state domain.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state[userID] = state
}

func (f *fakeStates) Get(userID int64) (domain.State, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.state[userID]
	return s, ok
}

func (f *fakeStates) Clear(userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.state, userID)
}

var receivedAt = time.Date(2024, 5, 4, 10, 30, 0, 0, time.UTC)

func newTestHandler(pipeline *fakePipeline) (*handler, *fakeMessenger, *fakeStates) {
	messenger := &fakeMessenger{fileData: "OggS"}
	states := newFakeStates()
	h := NewHandler(HandlerConfig{EventName: "Hackaton", Organizer: "opino.tech"}, messenger, pipeline, states)
	h.now = func() time.Time { return receivedAt }
	return h, messenger, states
}

func textMessage(userID int64, text string) *tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID, UserName: "ana"},
		Chat:      &tgbotapi.Chat{ID: userID * 10},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])}}
	}
	return &tgbotapi.Update{Message: msg}
}

func voiceMessage(userID int64, fileID string) *tgbotapi.Update {
	return &tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 2,
		From:      &tgbotapi.User{ID: userID, UserName: "ana"},
		Chat:      &tgbotapi.Chat{ID: userID * 10},
		Voice:     &tgbotapi.Voice{FileID: fileID, Duration: 42},
	}}
}

func callback(userID int64, data string) *tgbotapi.Update {
	return &tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{
			MessageID: 7,
			Chat:      &tgbotapi.Chat{ID: userID * 10},
		},
		Data: data,
	}}
}

func TestHandleStart(t *testing.T) {
	h, messenger, states := newTestHandler(&fakePipeline{})
	states.Save(1, domain.StateAwaitingVoice)

	h.HandleUpdate(context.Background(), textMessage(1, "/start"))

	if len(messenger.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(messenger.sent))
	}
	msg := messenger.sent[0]
	if msg.chatID != 10 {
		t.Errorf("chat id: got %d", msg.chatID)
	}
	if msg.text != domain.WelcomeMessage("opino.tech", "Hackaton") {
		t.Errorf("unexpected welcome text %q", msg.text)
	}
	if msg.keyboard == nil || msg.keyboard.Rows[0][0].CallbackData != domain.StartRecordingCallback {
		t.Errorf("expected the record button, got %+v", msg.keyboard)
	}
	if _, ok := states.Get(1); ok {
		t.Error("/start should reset the conversation state")
	}
}

func TestHandleCallback(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantText  string
		wantState bool
	}{
		{name: "start recording", data: domain.StartRecordingCallback, wantText: domain.RecordingInstructionsMessage, wantState: true},
		{name: "unknown", data: "draw_cat", wantText: domain.UnknownActionMessage, wantState: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h, messenger, states := newTestHandler(&fakePipeline{})

			h.HandleUpdate(context.Background(), callback(3, test.data))

			if len(messenger.answered) != 1 || messenger.answered[0] != "cb-1" {
				t.Errorf("callback must be answered, got %v", messenger.answered)
			}
			if len(messenger.edited) != 1 {
				t.Fatalf("expected one edit, got %d", len(messenger.edited))
			}
			edit := messenger.edited[0]
			if edit.chatID != 30 || edit.messageID != 7 || edit.text != test.wantText {
				t.Errorf("unexpected edit %+v", edit)
			}
			state, ok := states.Get(3)
			if got := ok && state == domain.StateAwaitingVoice; got != test.wantState {
				t.Errorf("awaiting voice: got %v, want %v", got, test.wantState)
			}
		})
	}
}

func TestHandleCallbackEditFailure(t *testing.T) {
	h, messenger, states := newTestHandler(&fakePipeline{})
	messenger.editErr = errors.New("message can't be edited")

	h.HandleUpdate(context.Background(), callback(3, domain.StartRecordingCallback))

	if len(messenger.answered) != 1 {
		t.Error("callback must be answered even when the edit fails")
	}
	if _, ok := states.Get(3); !ok {
		t.Error("user should still be primed for a voice note")
	}
}

func TestHandleText(t *testing.T) {
	h, messenger, states := newTestHandler(&fakePipeline{})

	h.HandleUpdate(context.Background(), textMessage(1, "hola"))
	states.Save(2, domain.StateAwaitingVoice)
	h.HandleUpdate(context.Background(), textMessage(2, "ya voy"))

	if len(messenger.sent) != 2 {
		t.Fatalf("expected two replies, got %d", len(messenger.sent))
	}
	if messenger.sent[0].text != domain.StartHintMessage {
		t.Errorf("unprimed user: got %q", messenger.sent[0].text)
	}
	if messenger.sent[1].text != domain.AwaitingVoiceReminderMessage {
		t.Errorf("primed user: got %q", messenger.sent[1].text)
	}
}

func TestHandleVoice(t *testing.T) {
	pipeline := &fakePipeline{}
	h, messenger, states := newTestHandler(pipeline)
	states.Save(4, domain.StateAwaitingVoice)

	h.HandleUpdate(context.Background(), voiceMessage(4, "file-4"))

	if len(pipeline.submissions) != 1 {
		t.Fatalf("expected one submission, got %d", len(pipeline.submissions))
	}
	sub := pipeline.submissions[0]
	if sub.ID == "" {
		t.Error("submission id is empty")
	}
	if sub.UserID != 4 || sub.ChatID != 40 || sub.Username != "ana" || !sub.ReceivedAt.Equal(receivedAt) {
		t.Errorf("unexpected submission %+v", sub)
	}

	rc, err := sub.Audio.Open(context.Background())
	if err != nil {
		t.Fatalf("opening audio: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "OggS" || len(messenger.openedIDs) != 1 || messenger.openedIDs[0] != "file-4" {
		t.Errorf("audio source reads the wrong file: %q %v", data, messenger.openedIDs)
	}

	if _, ok := states.Get(4); ok {
		t.Error("voice note should clear the awaiting state")
	}
}

func TestHandleVoiceFromUnprimedUser(t *testing.T) {
	pipeline := &fakePipeline{}
	h, _, _ := newTestHandler(pipeline)

	h.HandleUpdate(context.Background(), voiceMessage(5, "file-5"))

	if len(pipeline.submissions) != 1 {
		t.Errorf("voice notes are processed without priming, got %d submissions", len(pipeline.submissions))
	}
}

func TestHandleVoiceSerializesPerUser(t *testing.T) {
	var (
		mu        sync.Mutex
		active    = map[int64]int{}
		maxActive = map[int64]int{}
	)
	pipeline := &fakePipeline{process: func(sub domain.Submission) {
		mu.Lock()
		active[sub.UserID]++
		if active[sub.UserID] > maxActive[sub.UserID] {
			maxActive[sub.UserID] = active[sub.UserID]
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		active[sub.UserID]--
		mu.Unlock()
	}}
	h, _, _ := newTestHandler(pipeline)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.HandleUpdate(context.Background(), voiceMessage(6, "file-6"))
		}()
	}
	wg.Wait()

	if len(pipeline.submissions) != 5 {
		t.Fatalf("expected 5 submissions, got %d", len(pipeline.submissions))
	}
	if maxActive[6] != 1 {
		t.Errorf("voice notes of one user overlapped: max %d in flight", maxActive[6])
	}
	if n := len(h.locks.locks); n != 0 {
		t.Errorf("expected user locks to be released, %d left", n)
	}
}

func TestHandleVoiceDifferentUsersRunConcurrently(t *testing.T) {
	var entered sync.WaitGroup
	entered.Add(2)
	bothIn := make(chan struct{})
	go func() {
		entered.Wait()
		close(bothIn)
	}()

	var timedOut atomic.Bool
	pipeline := &fakePipeline{process: func(domain.Submission) {
		entered.Done()
		select {
		case <-bothIn:
		case <-time.After(2 * time.Second):
			timedOut.Store(true)
		}
	}}
	h, _, _ := newTestHandler(pipeline)

	var wg sync.WaitGroup
	for _, userID := range []int64{7, 8} {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			h.HandleUpdate(context.Background(), voiceMessage(userID, "file"))
		}(userID)
	}
	wg.Wait()

	if timedOut.Load() {
		t.Error("voice notes of different users should be processed concurrently")
	}
}
