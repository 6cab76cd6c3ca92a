package repository_test

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"shop_chat_server/internal/dao/mysql/repository"
	"shop_chat_server/internal/model"
	"shop_chat_server/internal/testutil"
	"shop_chat_server/pkg/enum/room_status_enum"
	"shop_chat_server/pkg/enum/sender_type_enum"
	"shop_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoom(uuid string) *model.ChatRoom {
	return &model.ChatRoom{
		Uuid:              uuid,
		CustomerSessionId: "sess-" + uuid,
		CustomerName:      "Budi",
		Subject:           "Tanya harga gitar",
		Status:            room_status_enum.Waiting,
		Priority:          "normal",
	}
}

func TestChatRoomFindByUuidNotFound(t *testing.T) {
	repos := testutil.NewRepos(t)

	_, err := repos.Room.FindByUuid("R404")
	require.Error(t, err)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestChatRoomListOrdersByLastActivity(t *testing.T) {
	repos := testutil.NewRepos(t)
	for _, id := range []string{"R1", "R2", "R3"} {
		require.NoError(t, repos.Room.Create(newRoom(id)))
	}

	base := time.Now().Add(-time.Hour)
	require.NoError(t, repos.Room.UpdateColumns("R1", map[string]interface{}{
		"last_message_at": sql.NullTime{Time: base.Add(2 * time.Hour), Valid: true},
	}))
	require.NoError(t, repos.Room.UpdateColumns("R3", map[string]interface{}{
		"last_message_at": sql.NullTime{Time: base.Add(3 * time.Hour), Valid: true},
		"status":          room_status_enum.Active,
	}))

	rooms, err := repos.Room.List("")
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, []string{"R3", "R1", "R2"}, []string{rooms[0].Uuid, rooms[1].Uuid, rooms[2].Uuid})

	active, err := repos.Room.List(room_status_enum.Active)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "R3", active[0].Uuid)
}

func TestChatMessageOrderingAndInternalFilter(t *testing.T) {
	repos := testutil.NewRepos(t)
	require.NoError(t, repos.Room.Create(newRoom("R1")))

	now := time.Now()
	msgs := []model.ChatMessage{
		{Uuid: 3, RoomId: "R1", SenderType: sender_type_enum.Customer, SenderName: "Budi", Message: "first", CreatedAt: now},
		{Uuid: 2, RoomId: "R1", SenderType: sender_type_enum.Admin, SenderName: "Ani", Message: "note", IsInternal: true, CreatedAt: now},
		{Uuid: 1, RoomId: "R1", SenderType: sender_type_enum.Admin, SenderName: "Ani", Message: "second", CreatedAt: now.Add(time.Second)},
	}
	for i := range msgs {
		require.NoError(t, repos.Message.Create(&msgs[i]))
	}

	all, err := repos.Message.FindByRoomId("R1", true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Message)
	assert.Equal(t, "note", all[1].Message)
	assert.Equal(t, "second", all[2].Message)

	visible, err := repos.Message.FindByRoomId("R1", false)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	for _, m := range visible {
		assert.False(t, m.IsInternal)
	}

	n, err := repos.Message.MarkReadBySender("R1", sender_type_enum.Admin)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestArchiveIdleOnlyTouchesStaleResolvedRooms(t *testing.T) {
	repos := testutil.NewRepos(t)
	for _, id := range []string{"R1", "R2", "R3"} {
		require.NoError(t, repos.Room.Create(newRoom(id)))
	}
	old := sql.NullTime{Time: time.Now().Add(-30 * 24 * time.Hour), Valid: true}
	recent := sql.NullTime{Time: time.Now(), Valid: true}
	require.NoError(t, repos.Room.UpdateColumns("R1", map[string]interface{}{"status": room_status_enum.Resolved, "last_message_at": old}))
	require.NoError(t, repos.Room.UpdateColumns("R2", map[string]interface{}{"status": room_status_enum.Resolved, "last_message_at": recent}))
	require.NoError(t, repos.Room.UpdateColumns("R3", map[string]interface{}{"status": room_status_enum.Active, "last_message_at": old}))

	n, err := repos.Room.ArchiveIdle(time.Now().Add(-14 * 24 * time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	r1, err := repos.Room.FindByUuid("R1")
	require.NoError(t, err)
	assert.Equal(t, room_status_enum.Closed, r1.Status)
	r2, err := repos.Room.FindByUuid("R2")
	require.NoError(t, err)
	assert.Equal(t, room_status_enum.Resolved, r2.Status)
}

func TestStaffPasswordIsHashed(t *testing.T) {
	repos := testutil.NewRepos(t)
	staff := &model.StaffUser{Uuid: "A1", Username: "ani", DisplayName: "Ani", RawPassword: "secret123"}
	require.NoError(t, repos.Staff.Create(staff))

	found, err := repos.Staff.FindByUsername("ani")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", found.Password)
	assert.True(t, found.CheckPassword("secret123"))
	assert.False(t, found.CheckPassword("wrong"))
}

func TestTransactionRollsBack(t *testing.T) {
	repos := testutil.NewRepos(t)
	boom := errors.New("boom")

	err := repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Room.Create(newRoom("R9")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repos.Room.FindByUuid("R9")
	assert.True(t, errorx.IsNotFound(err))
}
