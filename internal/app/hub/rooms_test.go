package hub_test

import (
	"reflect"
	"sort"
	"testing"

	"presencehub/internal/app/hub"
)

func members(m *hub.Membership, room string) []string {
	got := m.Members(room)
	sort.Strings(got)
	return got
}

func TestMembershipJoinLeave(t *testing.T) {
	m := hub.NewMembership()

	m.Join("c1", "general")
	m.Join("c2", "general")
	m.Join("c1", "news")

	if got := members(m, "general"); !reflect.DeepEqual(got, []string{"c1", "c2"}) {
		t.Errorf("Members(general) = %v", got)
	}
	if got := members(m, "news"); !reflect.DeepEqual(got, []string{"c1"}) {
		t.Errorf("Members(news) = %v", got)
	}
	if got := m.Rooms("c1"); !reflect.DeepEqual(got, []string{"general", "news"}) {
		t.Errorf("Rooms(c1) = %v", got)
	}

	m.Leave("c1", "general")

	if got := members(m, "general"); !reflect.DeepEqual(got, []string{"c2"}) {
		t.Errorf("Members(general) after leave = %v", got)
	}
	if got := m.Rooms("c1"); !reflect.DeepEqual(got, []string{"news"}) {
		t.Errorf("Rooms(c1) after leave = %v", got)
	}
}

func TestMembershipIdempotency(t *testing.T) {
	m := hub.NewMembership()

	m.Join("c1", "general")
	m.Join("c1", "general")

	if got := m.Members("general"); len(got) != 1 {
		t.Errorf("double join produced %d members, want 1", len(got))
	}

	// Leaving twice, or leaving a room never joined, is a no-op.
	m.Leave("c1", "general")
	m.Leave("c1", "general")
	m.Leave("c9", "nowhere")

	if got := m.Members("general"); got != nil {
		t.Errorf("Members(general) after final leave = %v, want empty", got)
	}
}

func TestMembershipUnknownRoomEmpty(t *testing.T) {
	m := hub.NewMembership()

	if got := m.Members("ghost-town"); got != nil {
		t.Errorf("Members of unknown room = %v, want empty", got)
	}
	if got := m.Rooms("nobody"); got != nil {
		t.Errorf("Rooms of unknown connection = %v, want empty", got)
	}
}

func TestMembershipPurge(t *testing.T) {
	m := hub.NewMembership()

	m.Join("c1", "general")
	m.Join("c1", "news")
	m.Join("c2", "general")

	affected := m.Purge("c1")
	sort.Strings(affected)
	if !reflect.DeepEqual(affected, []string{"general", "news"}) {
		t.Errorf("Purge affected = %v", affected)
	}

	if got := members(m, "general"); !reflect.DeepEqual(got, []string{"c2"}) {
		t.Errorf("Members(general) after purge = %v", got)
	}
	if got := m.Members("news"); got != nil {
		t.Errorf("Members(news) after purge = %v, want empty", got)
	}
	if got := m.Rooms("c1"); got != nil {
		t.Errorf("Rooms(c1) after purge = %v, want empty", got)
	}

	// Purging a connection with no memberships is a no-op.
	if affected := m.Purge("c1"); affected != nil {
		t.Errorf("second Purge affected %v, want nothing", affected)
	}
}
