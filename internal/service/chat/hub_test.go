package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"shop_chat_server/internal/dao/mysql/repository"
	myredis "shop_chat_server/internal/dao/redis"
	"shop_chat_server/internal/dto/respond"
	"shop_chat_server/internal/infrastructure/mq"
	"shop_chat_server/internal/model"
	"shop_chat_server/internal/testutil"
	"shop_chat_server/pkg/enum/message_type_enum"
	"shop_chat_server/pkg/enum/room_status_enum"
	"shop_chat_server/pkg/enum/sender_type_enum"
	"shop_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu     sync.Mutex
	frames [][]byte
	limit  int // 0 表示不限
	closed bool
}

func (s *fakeSink) Send(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || (s.limit > 0 && len(s.frames) >= s.limit) {
		return false
	}
	s.frames = append(s.frames, frame)
	return true
}

func (s *fakeSink) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *fakeSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type decodedFrame struct {
	Type    FrameType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (s *fakeSink) decoded(t *testing.T) []decodedFrame {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]decodedFrame, 0, len(s.frames))
	for _, raw := range s.frames {
		var f decodedFrame
		require.NoError(t, json.Unmarshal(raw, &f))
		out = append(out, f)
	}
	return out
}

func (s *fakeSink) last(t *testing.T) decodedFrame {
	t.Helper()
	frames := s.decoded(t)
	require.NotEmpty(t, frames)
	return frames[len(frames)-1]
}

func (s *fakeSink) messages(t *testing.T) []respond.ChatMessageRespond {
	t.Helper()
	var msgs []respond.ChatMessageRespond
	for _, f := range s.decoded(t) {
		if f.Type != FrameNewMessage {
			continue
		}
		var m respond.ChatMessageRespond
		require.NoError(t, json.Unmarshal(f.Payload, &m))
		msgs = append(msgs, m)
	}
	return msgs
}

func (s *fakeSink) reset() {
	s.mu.Lock()
	s.frames = nil
	s.mu.Unlock()
}

func errorCode(t *testing.T, f decodedFrame) int {
	t.Helper()
	var p ErrorPayload
	require.NoError(t, json.Unmarshal(f.Payload, &p))
	return p.Code
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []mq.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e mq.Event) error {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type hubFixture struct {
	hub       *Hub
	repos     *repository.Repositories
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *hubFixture {
	t.Helper()
	repos := testutil.NewRepos(t)
	pub := &recordingPublisher{}
	hub := NewHub(HubConfig{
		RoomRepo:    repos.Room,
		MessageRepo: repos.Message,
		History:     myredis.NewHistoryCache(myredis.NewMemoryCache(), time.Minute),
		Publisher:   pub,
	})
	t.Cleanup(hub.Close)
	return &hubFixture{hub: hub, repos: repos, publisher: pub}
}

func (f *hubFixture) createRoom(t *testing.T, id, session, customer string) {
	t.Helper()
	require.NoError(t, f.repos.Room.Create(&model.ChatRoom{
		Uuid:              id,
		CustomerSessionId: session,
		CustomerName:      customer,
		Subject:           "Tanya stok",
		Status:            room_status_enum.Waiting,
		Priority:          "normal",
	}))
}

func (f *hubFixture) connect(t *testing.T, principal *Principal) (Token, *fakeSink) {
	t.Helper()
	sink := &fakeSink{}
	token, ok := f.hub.Connect(sink, principal)
	require.True(t, ok)
	return token, sink
}

func (f *hubFixture) send(token Token, frameType FrameType, payload any) {
	data, _ := json.Marshal(map[string]any{"type": frameType, "payload": payload})
	f.hub.Handle(context.Background(), token, data)
}

func (f *hubFixture) joinCustomer(t *testing.T, token Token, roomId, session string) {
	t.Helper()
	f.send(token, FrameJoinRoom, map[string]string{"roomId": roomId, "sessionId": session, "userType": "customer"})
	state, ok := f.hub.StateOf(token)
	require.True(t, ok)
	require.Equal(t, Joined(roomId), state)
}

func (f *hubFixture) joinAdmin(t *testing.T, token Token, roomId string) {
	t.Helper()
	f.send(token, FrameJoinRoom, map[string]string{"roomId": roomId, "userType": "admin"})
	state, _ := f.hub.StateOf(token)
	require.Equal(t, Joined(roomId), state)
}

func (f *hubFixture) say(token Token, text string) {
	f.send(token, FrameSendMessage, map[string]string{"message": text})
}

var staff = &Principal{StaffId: "A1", DisplayName: "Ani"}

func TestJoinUnknownRoomSendsRoomNotFound(t *testing.T) {
	f := newFixture(t)
	token, sink := f.connect(t, nil)

	f.send(token, FrameJoinRoom, map[string]string{"roomId": "R404", "sessionId": "cs_x", "userType": "customer"})

	last := sink.last(t)
	assert.Equal(t, FrameError, last.Type)
	assert.Equal(t, errorx.CodeRoomNotFound, errorCode(t, last))
	state, _ := f.hub.StateOf(token)
	assert.Equal(t, Unjoined(), state)
	assert.Empty(t, f.hub.MembersOf("R404"))
	assert.False(t, sink.isClosed())
}

func TestCustomerJoinRequiresMatchingSession(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")
	token, sink := f.connect(t, nil)

	f.send(token, FrameJoinRoom, map[string]string{"roomId": "R1", "sessionId": "cs_other", "userType": "customer"})
	assert.Equal(t, errorx.CodeRoomNotFound, errorCode(t, sink.last(t)))
	assert.Empty(t, f.hub.MembersOf("R1"))

	f.joinCustomer(t, token, "R1", "cs_budi")
	last := sink.last(t)
	assert.Equal(t, FrameJoinedRoom, last.Type)
	assert.JSONEq(t, `{"roomId":"R1"}`, string(last.Payload))
}

func TestAnonymousConnectionCannotJoinAsAdmin(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")
	token, sink := f.connect(t, nil)

	f.send(token, FrameJoinRoom, map[string]string{"roomId": "R1", "userType": "admin"})

	assert.Equal(t, errorx.CodeUnauthorized, errorCode(t, sink.last(t)))
	assert.Empty(t, f.hub.MembersOf("R1"))
}

func TestAnonymousJoinRequiresSessionId(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")
	token, sink := f.connect(t, nil)

	f.send(token, FrameJoinRoom, map[string]string{"roomId": "R1", "userType": "customer"})

	assert.Equal(t, errorx.CodeMalformedFrame, errorCode(t, sink.last(t)))
	assert.Empty(t, f.hub.MembersOf("R1"))
}

func TestStaffConnectionJoinsAsAdminWhateverUserType(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")
	token, sink := f.connect(t, staff)

	f.send(token, FrameJoinRoom, map[string]string{"roomId": "R1", "userType": "customer"})
	assert.Equal(t, FrameJoinedRoom, sink.last(t).Type)

	f.say(token, "Ada, kak")
	msgs := sink.messages(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, sender_type_enum.Admin, msgs[0].SenderType)
	assert.Equal(t, "Ani", msgs[0].SenderName)
}

func TestJoinIsSilentToOtherMembers(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")
	customer, customerSink := f.connect(t, nil)
	f.joinCustomer(t, customer, "R1", "cs_budi")
	customerSink.reset()

	admin, _ := f.connect(t, staff)
	f.joinAdmin(t, admin, "R1")

	assert.Empty(t, customerSink.decoded(t))
	assert.ElementsMatch(t, []Token{customer, admin}, f.hub.MembersOf("R1"))
}

func TestSendBeforeJoinIsRejected(t *testing.T) {
	f := newFixture(t)
	token, sink := f.connect(t, nil)

	f.say(token, "halo")

	assert.Equal(t, errorx.CodeNotJoined, errorCode(t, sink.last(t)))
	assert.False(t, sink.isClosed())
}

func TestBlankMessageIsRejected(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")
	token, sink := f.connect(t, nil)
	f.joinCustomer(t, token, "R1", "cs_budi")

	f.say(token, "   \n\t ")

	assert.Equal(t, errorx.CodeEmptyMessage, errorCode(t, sink.last(t)))
	msgs, err := f.repos.Message.FindByRoomId("R1", true)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMalformedFramesKeepConnectionOpen(t *testing.T) {
	f := newFixture(t)
	token, sink := f.connect(t, nil)

	for _, raw := range []string{
		`not json`,
		`{"type":"dance","payload":{}}`,
		`{"payload":{}}`,
		`{"type":"join_room","payload":{"roomId":"R1"}}`,
		`{"type":"send_message","payload":{"senderName":"x"}}`,
	} {
		sink.reset()
		f.hub.Handle(context.Background(), token, []byte(raw))
		last := sink.last(t)
		assert.Equal(t, FrameError, last.Type, raw)
		assert.Equal(t, errorx.CodeMalformedFrame, errorCode(t, last), raw)
	}
	assert.False(t, sink.isClosed())
}

func TestSendFansOutToEveryMemberIncludingSender(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")
	f.createRoom(t, "R2", "cs_sari", "Sari")

	customer, customerSink := f.connect(t, nil)
	f.joinCustomer(t, customer, "R1", "cs_budi")
	admin, adminSink := f.connect(t, staff)
	f.joinAdmin(t, admin, "R1")
	outsider, outsiderSink := f.connect(t, nil)
	f.joinCustomer(t, outsider, "R2", "cs_sari")

	f.say(customer, "  Halo, ada stok gitar?  ")

	for _, sink := range []*fakeSink{customerSink, adminSink} {
		msgs := sink.messages(t)
		require.Len(t, msgs, 1)
		assert.Equal(t, "Halo, ada stok gitar?", msgs[0].Message)
		assert.Equal(t, sender_type_enum.Customer, msgs[0].SenderType)
		assert.Equal(t, "Budi", msgs[0].SenderName)
		assert.Equal(t, "R1", msgs[0].RoomId)
		assert.Equal(t, message_type_enum.Text, msgs[0].MessageType)
		assert.False(t, msgs[0].IsInternal)
	}
	assert.Empty(t, outsiderSink.messages(t))

	room, err := f.repos.Room.FindByUuid("R1")
	require.NoError(t, err)
	assert.True(t, room.UnreadByAdmin)
	assert.False(t, room.UnreadByCustomer)
	assert.True(t, room.LastMessageAt.Valid)
	assert.Equal(t, "Halo, ada stok gitar?", room.LastMessagePreview)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, mq.EventMessageCreated, f.publisher.events[0].Type)
}

func TestAdminMessageUsesStaffIdentity(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")
	admin, adminSink := f.connect(t, staff)
	f.joinAdmin(t, admin, "R1")

	f.say(admin, "Ada, kak")

	msgs := adminSink.messages(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, sender_type_enum.Admin, msgs[0].SenderType)
	assert.Equal(t, "Ani", msgs[0].SenderName)
	assert.Equal(t, "A1", msgs[0].SenderUserId)

	room, err := f.repos.Room.FindByUuid("R1")
	require.NoError(t, err)
	assert.True(t, room.UnreadByCustomer)
	assert.False(t, room.UnreadByAdmin)
}

func TestJoinMovesConnectionOutOfPreviousRoom(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_a", "A")
	f.createRoom(t, "R2", "cs_b", "B")
	admin, adminSink := f.connect(t, staff)
	f.joinAdmin(t, admin, "R1")
	f.joinAdmin(t, admin, "R2")

	assert.Empty(t, f.hub.MembersOf("R1"))
	assert.Equal(t, []Token{admin}, f.hub.MembersOf("R2"))

	customer, _ := f.connect(t, nil)
	f.joinCustomer(t, customer, "R1", "cs_a")
	adminSink.reset()
	f.say(customer, "masih di sana?")
	assert.Empty(t, adminSink.messages(t))
}

func TestLeaveStopsDeliveryAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")
	customer, _ := f.connect(t, nil)
	f.joinCustomer(t, customer, "R1", "cs_budi")
	admin, adminSink := f.connect(t, staff)
	f.joinAdmin(t, admin, "R1")

	f.send(admin, FrameLeaveRoom, map[string]any{})
	f.send(admin, FrameLeaveRoom, map[string]any{})
	adminSink.reset()
	f.say(customer, "halo?")

	assert.Empty(t, adminSink.decoded(t))
	state, _ := f.hub.StateOf(admin)
	assert.Equal(t, Unjoined(), state)

	f.say(admin, "sudah keluar")
	assert.Equal(t, errorx.CodeNotJoined, errorCode(t, adminSink.last(t)))
}

func TestDisconnectClearsMembership(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")
	customer, customerSink := f.connect(t, nil)
	f.joinCustomer(t, customer, "R1", "cs_budi")

	f.hub.Disconnect(customer)
	f.hub.Disconnect(customer)

	assert.True(t, customerSink.isClosed())
	assert.Empty(t, f.hub.MembersOf("R1"))
	_, ok := f.hub.StateOf(customer)
	assert.False(t, ok)
	assert.Equal(t, 0, f.hub.ConnectionCount())
	assert.Empty(t, f.hub.Presence())
}

func TestFanOutOrderMatchesPersistedOrder(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")
	watcher, watcherSink := f.connect(t, staff)
	f.joinAdmin(t, watcher, "R1")

	const senders, perSender = 4, 10
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		token, _ := f.connect(t, nil)
		f.joinCustomer(t, token, "R1", "cs_budi")
		wg.Add(1)
		go func(n int, token Token) {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				f.say(token, fmt.Sprintf("m-%d-%d", n, j))
			}
		}(i, token)
	}
	wg.Wait()

	received := watcherSink.messages(t)
	require.Len(t, received, senders*perSender)
	stored, err := f.repos.Message.FindByRoomId("R1", false)
	require.NoError(t, err)
	require.Len(t, stored, senders*perSender)
	for i := range stored {
		assert.Equal(t, stored[i].Message, received[i].Message)
	}
	assert.Equal(t, 0, f.hub.roomLocks.size())
}

type failingMessages struct {
	repository.ChatMessageRepository
}

func (failingMessages) Create(*model.ChatMessage) error {
	return errorx.Wrap(errors.New("disk full"), errorx.CodeDBError, "database error")
}

type staleRooms struct {
	repository.ChatRoomRepository
}

func (staleRooms) UpdateColumns(string, map[string]interface{}) error {
	return errorx.Wrap(errors.New("lock wait timeout"), errorx.CodeDBError, "database error")
}

func TestPersistenceFailureSkipsFanOut(t *testing.T) {
	repos := testutil.NewRepos(t)
	hub := NewHub(HubConfig{RoomRepo: repos.Room, MessageRepo: failingMessages{repos.Message}})
	defer hub.Close()
	f := &hubFixture{hub: hub, repos: repos}
	f.createRoom(t, "R1", "cs_budi", "Budi")
	customer, customerSink := f.connect(t, nil)
	f.joinCustomer(t, customer, "R1", "cs_budi")
	admin, adminSink := f.connect(t, staff)
	f.joinAdmin(t, admin, "R1")
	adminSink.reset()

	f.say(customer, "halo")

	assert.Equal(t, errorx.CodePersistenceFailure, errorCode(t, customerSink.last(t)))
	assert.Empty(t, customerSink.messages(t))
	assert.Empty(t, adminSink.decoded(t))
}

func TestMetadataFailureStillFansOutWithWarning(t *testing.T) {
	repos := testutil.NewRepos(t)
	hub := NewHub(HubConfig{RoomRepo: staleRooms{repos.Room}, MessageRepo: repos.Message})
	defer hub.Close()
	f := &hubFixture{hub: hub, repos: repos}
	f.createRoom(t, "R1", "cs_budi", "Budi")
	customer, customerSink := f.connect(t, nil)
	f.joinCustomer(t, customer, "R1", "cs_budi")

	f.say(customer, "halo")

	frames := customerSink.decoded(t)
	require.Len(t, frames, 3)
	assert.Equal(t, FrameNewMessage, frames[1].Type)
	assert.Equal(t, FrameWarning, frames[2].Type)
	assert.Equal(t, errorx.CodeMetadataStale, errorCode(t, frames[2]))
}

func TestSlowConsumerIsDisconnected(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")
	customer, customerSink := f.connect(t, nil)
	f.joinCustomer(t, customer, "R1", "cs_budi")

	slow := &fakeSink{limit: 1}
	slowToken, ok := f.hub.Connect(slow, staff)
	require.True(t, ok)
	f.joinAdmin(t, slowToken, "R1") // joined_room 占满队列

	f.say(customer, "halo")

	assert.True(t, slow.isClosed())
	assert.Equal(t, []Token{customer}, f.hub.MembersOf("R1"))
	assert.Len(t, customerSink.messages(t), 1)
}

func TestInternalNoteReachesOnlyAdmins(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")
	customer, customerSink := f.connect(t, nil)
	f.joinCustomer(t, customer, "R1", "cs_budi")
	admin, adminSink := f.connect(t, staff)
	f.joinAdmin(t, admin, "R1")

	n := f.hub.BroadcastInternalNote(respond.ChatMessageRespond{
		Id: "1", RoomId: "R1", SenderType: sender_type_enum.Admin, SenderName: "Ani",
		Message: "VIP customer", MessageType: message_type_enum.Text, IsInternal: true,
	})

	assert.Equal(t, 1, n)
	assert.Empty(t, customerSink.messages(t))
	notes := adminSink.messages(t)
	require.Len(t, notes, 1)
	assert.True(t, notes[0].IsInternal)
}

func TestPresenceCountsByIdentity(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")
	f.createRoom(t, "R2", "cs_sari", "Sari")
	c1, _ := f.connect(t, nil)
	f.joinCustomer(t, c1, "R1", "cs_budi")
	a1, _ := f.connect(t, staff)
	f.joinAdmin(t, a1, "R1")
	c2, _ := f.connect(t, nil)
	f.joinCustomer(t, c2, "R2", "cs_sari")
	f.connect(t, nil)

	assert.Equal(t, []respond.RoomPresenceRespond{
		{RoomId: "R1", Customers: 1, Admins: 1},
		{RoomId: "R2", Customers: 1},
	}, f.hub.Presence())
	assert.Equal(t, 4, f.hub.ConnectionCount())
}

func TestCloseDisconnectsEverything(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")
	customer, sink := f.connect(t, nil)
	f.joinCustomer(t, customer, "R1", "cs_budi")

	f.hub.Close()

	assert.True(t, sink.isClosed())
	assert.Empty(t, f.hub.MembersOf("R1"))
	late := &fakeSink{}
	_, ok := f.hub.Connect(late, nil)
	assert.False(t, ok)
	assert.True(t, late.isClosed())
}

func TestPreviewCountsRunes(t *testing.T) {
	assert.Equal(t, "halo", Preview("halo", 100))
	long := strings.Repeat("é", 150)
	assert.Equal(t, strings.Repeat("é", 100), Preview(long, 100))
}

// 顾客 Budi 询问库存，客服 Ani 回复，双方看到相同的对话
func TestCustomerAndStaffConversation(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "R1", "cs_budi", "Budi")

	budi, budiSink := f.connect(t, nil)
	f.joinCustomer(t, budi, "R1", "cs_budi")
	f.say(budi, "Halo, ada stok Yamaha C40?")

	ani, aniSink := f.connect(t, staff)
	f.joinAdmin(t, ani, "R1")
	f.say(ani, "Ada kak, ready 3 unit")

	budiMsgs := budiSink.messages(t)
	require.Len(t, budiMsgs, 2)
	assert.Equal(t, "Budi", budiMsgs[0].SenderName)
	assert.Equal(t, "Ani", budiMsgs[1].SenderName)

	aniMsgs := aniSink.messages(t)
	require.Len(t, aniMsgs, 1)
	assert.Equal(t, budiMsgs[1].Id, aniMsgs[0].Id)

	room, err := f.repos.Room.FindByUuid("R1")
	require.NoError(t, err)
	assert.Equal(t, "Ada kak, ready 3 unit", room.LastMessagePreview)
	assert.True(t, room.UnreadByAdmin)
	assert.True(t, room.UnreadByCustomer)
}
