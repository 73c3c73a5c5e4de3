package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/memohai/imgkeeper/internal/channel"
	"github.com/memohai/imgkeeper/internal/namecache"
)

type fakeMetadata struct {
	mu         sync.Mutex
	groupNames map[string]string
	roomNames  map[string]string
	err        error
	groupCalls int
	roomCalls  int
}

func (f *fakeMetadata) GetGroupSummary(_ context.Context, groupID string) (channel.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groupCalls++
	if f.err != nil {
		return channel.Summary{}, f.err
	}
	return channel.Summary{ID: groupID, Name: f.groupNames[groupID]}, nil
}

func (f *fakeMetadata) GetRoomSummary(_ context.Context, roomID string) (channel.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roomCalls++
	if f.err != nil {
		return channel.Summary{}, f.err
	}
	name, ok := f.roomNames[roomID]
	if !ok {
		return channel.Summary{}, channel.ErrSummaryUnsupported
	}
	return channel.Summary{ID: roomID, Name: name}, nil
}

func groupSource(id string) channel.Source {
	return channel.Source{Kind: channel.SourceGroup, GroupID: id, UserID: "Uxyz"}
}

func TestResolve_PrivateAndUnknown(t *testing.T) {
	api := &fakeMetadata{}
	r := New(nil, api, namecache.NewMemory(time.Hour), Options{})
	ctx := context.Background()

	assert.Equal(t, PrivateFolder, r.Resolve(ctx, channel.Source{Kind: channel.SourceUser, UserID: "U1"}))
	assert.Equal(t, UnknownFolder, r.Resolve(ctx, channel.Source{Kind: channel.SourceUnknown}))
	assert.Equal(t, UnknownFolder, r.Resolve(ctx, channel.Source{Kind: channel.SourceGroup}))
	assert.Zero(t, api.groupCalls)
}

func TestResolve_GroupComposesSanitizedName(t *testing.T) {
	api := &fakeMetadata{groupNames: map[string]string{"C0123456789abcdef": `Family: "Trip"  2024`}}
	r := New(nil, api, namecache.NewMemory(time.Hour), Options{})

	got := r.Resolve(context.Background(), groupSource("C0123456789abcdef"))
	assert.Equal(t, "group_Family Trip 2024_abcdef", got)
}

func TestResolve_CachedWithinTTL(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	api := &fakeMetadata{groupNames: map[string]string{"C1234567890": "Friends"}}
	r := New(nil, api, namecache.NewMemory(24*time.Hour, namecache.WithClock(clock)), Options{})
	ctx := context.Background()

	first := r.Resolve(ctx, groupSource("C1234567890"))
	now = now.Add(23 * time.Hour)
	second := r.Resolve(ctx, groupSource("C1234567890"))

	assert.Equal(t, first, second)
	assert.Equal(t, 1, api.groupCalls, "second resolution within the TTL must not call the API")
}

func TestResolve_RefreshAfterTTL(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	api := &fakeMetadata{groupNames: map[string]string{"C1234567890": "Friends"}}
	r := New(nil, api, namecache.NewMemory(24*time.Hour, namecache.WithClock(clock)), Options{})
	ctx := context.Background()

	r.Resolve(ctx, groupSource("C1234567890"))
	api.groupNames["C1234567890"] = "Renamed"
	now = now.Add(24 * time.Hour)

	got := r.Resolve(ctx, groupSource("C1234567890"))
	assert.Equal(t, "group_Renamed_567890", got)
	assert.Equal(t, 2, api.groupCalls)

	r.Resolve(ctx, groupSource("C1234567890"))
	assert.Equal(t, 2, api.groupCalls, "refreshed entry is served from cache")
}

func TestResolve_LookupFailureFallsBack(t *testing.T) {
	api := &fakeMetadata{err: errors.New("403 forbidden")}
	ctx := context.Background()

	long := New(nil, api, namecache.NewMemory(time.Hour), Options{})
	assert.Equal(t, "group_C1234567890", long.Resolve(ctx, groupSource("C1234567890")))

	short := New(nil, api, namecache.NewMemory(time.Hour), Options{FallbackShortID: true})
	assert.Equal(t, "group_567890", short.Resolve(ctx, groupSource("C1234567890")))
}

func TestResolve_FailureIsNotCached(t *testing.T) {
	api := &fakeMetadata{err: errors.New("timeout")}
	r := New(nil, api, namecache.NewMemory(time.Hour), Options{})
	ctx := context.Background()

	r.Resolve(ctx, groupSource("C1234567890"))
	api.err = nil
	api.groupNames = map[string]string{"C1234567890": "Back"}

	assert.Equal(t, "group_Back_567890", r.Resolve(ctx, groupSource("C1234567890")))
	assert.Equal(t, 2, api.groupCalls)
}

func TestResolve_EmptyNameFallsBack(t *testing.T) {
	api := &fakeMetadata{groupNames: map[string]string{"C1234567890": `???`}}
	r := New(nil, api, namecache.NewMemory(time.Hour), Options{})
	assert.Equal(t, "group_C1234567890", r.Resolve(context.Background(), groupSource("C1234567890")))
}

func TestResolve_RoomCapabilityFlag(t *testing.T) {
	api := &fakeMetadata{roomNames: map[string]string{"R1234567890": "Lunch"}}
	room := channel.Source{Kind: channel.SourceRoom, RoomID: "R1234567890"}
	ctx := context.Background()

	disabled := New(nil, api, namecache.NewMemory(time.Hour), Options{})
	assert.Equal(t, "room_R1234567890", disabled.Resolve(ctx, room))
	assert.Zero(t, api.roomCalls)

	enabled := New(nil, api, namecache.NewMemory(time.Hour), Options{ResolveRoomNames: true})
	assert.Equal(t, "room_Lunch_567890", enabled.Resolve(ctx, room))
	assert.Equal(t, 1, api.roomCalls)

	unsupported := channel.Source{Kind: channel.SourceRoom, RoomID: "Rother"}
	assert.Equal(t, "room_Rother", enabled.Resolve(ctx, unsupported))
}

func TestResolve_NilCacheAlwaysLooksUp(t *testing.T) {
	api := &fakeMetadata{groupNames: map[string]string{"C1234567890": "Friends"}}
	r := New(nil, api, nil, Options{})
	ctx := context.Background()

	r.Resolve(ctx, groupSource("C1234567890"))
	r.Resolve(ctx, groupSource("C1234567890"))
	assert.Equal(t, 2, api.groupCalls)
}
