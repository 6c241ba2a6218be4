package usecase

import (
	"listing-service/internal/core/domain"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestAssembleTree_ApartmentRoom(t *testing.T) {
	branch := domain.Branch{ID: uuid.New(), Name: "Bengaluru", CreatedAt: at(1)}
	apartment := domain.Apartment{ID: uuid.New(), BranchID: branch.ID, Name: "Koramangala Loft", CreatedAt: at(2)}
	room := domain.Room{ID: uuid.New(), Name: "Queen Room", Owner: domain.NewRoomOwner(&apartment.ID, nil), CreatedAt: at(3)}

	tree := AssembleTree([]domain.Branch{branch}, []domain.Apartment{apartment}, []domain.Room{room})

	require.Len(t, tree.Branches, 1)
	b := tree.Branches[0]
	assert.Equal(t, "Bengaluru", b.Name)
	assert.Empty(t, b.Rooms)
	require.Len(t, b.Apartments, 1)
	assert.Equal(t, "Koramangala Loft", b.Apartments[0].Name)
	assert.Equal(t, "Bengaluru", b.Apartments[0].BranchName)
	require.Len(t, b.Apartments[0].Rooms, 1)
	assert.Equal(t, "Queen Room", b.Apartments[0].Rooms[0].Name)
}

func TestAssembleTree_DirectBranchRoom(t *testing.T) {
	branch := domain.Branch{ID: uuid.New(), Name: "Mumbai", CreatedAt: at(1)}
	room := domain.Room{ID: uuid.New(), Name: "Garden Suite", Owner: domain.NewRoomOwner(nil, &branch.ID), CreatedAt: at(2)}

	tree := AssembleTree([]domain.Branch{branch}, nil, []domain.Room{room})

	require.Len(t, tree.Branches, 1)
	assert.Empty(t, tree.Branches[0].Apartments)
	require.Len(t, tree.Branches[0].Rooms, 1)
	assert.Equal(t, "Garden Suite", tree.Branches[0].Rooms[0].Name)
}

func TestAssembleTree_ExcludesUnresolvedAndUnattachedRooms(t *testing.T) {
	branch := domain.Branch{ID: uuid.New(), Name: "Goa", CreatedAt: at(1)}
	apartment := domain.Apartment{ID: uuid.New(), BranchID: branch.ID, Name: "Beach House", CreatedAt: at(2)}
	missing := uuid.New()

	rooms := []domain.Room{
		{ID: uuid.New(), Name: "dangling apartment", Owner: domain.NewRoomOwner(&missing, nil)},
		{ID: uuid.New(), Name: "dangling branch", Owner: domain.NewRoomOwner(nil, &missing)},
		{ID: uuid.New(), Name: "both owners", Owner: domain.NewRoomOwner(&apartment.ID, &branch.ID)},
		{ID: uuid.New(), Name: "no owner", Owner: domain.NewRoomOwner(nil, nil)},
	}

	tree := AssembleTree([]domain.Branch{branch}, []domain.Apartment{apartment}, rooms)

	assert.Equal(t, 0, tree.RoomCount())
	require.Len(t, tree.Branches, 1)
	assert.Len(t, tree.Branches[0].Apartments, 1)
}

func TestAssembleTree_DropsOrphanedApartments(t *testing.T) {
	branch := domain.Branch{ID: uuid.New(), Name: "Delhi"}
	orphan := domain.Apartment{ID: uuid.New(), BranchID: uuid.New(), Name: "Orphan"}
	orphanRoom := domain.Room{ID: uuid.New(), Name: "Lost", Owner: domain.OwnedByApartment(orphan.ID)}

	tree := AssembleTree([]domain.Branch{branch}, []domain.Apartment{orphan}, []domain.Room{orphanRoom})

	assert.Equal(t, 0, tree.ApartmentCount())
	assert.Equal(t, 0, tree.RoomCount())
}

func TestAssembleTree_SortsSiblingsByCreatedAt(t *testing.T) {
	b1 := domain.Branch{ID: uuid.New(), Name: "newer", CreatedAt: at(10)}
	b2 := domain.Branch{ID: uuid.New(), Name: "older", CreatedAt: at(1)}
	a1 := domain.Apartment{ID: uuid.New(), BranchID: b2.ID, Name: "a-late", CreatedAt: at(9)}
	a2 := domain.Apartment{ID: uuid.New(), BranchID: b2.ID, Name: "a-early", CreatedAt: at(2)}
	rooms := []domain.Room{
		{ID: uuid.New(), Name: "r3", Owner: domain.OwnedByApartment(a2.ID), CreatedAt: at(7)},
		{ID: uuid.New(), Name: "r1", Owner: domain.OwnedByApartment(a2.ID), CreatedAt: at(3)},
		{ID: uuid.New(), Name: "d2", Owner: domain.OwnedByBranch(b2.ID), CreatedAt: at(8)},
		{ID: uuid.New(), Name: "d1", Owner: domain.OwnedByBranch(b2.ID), CreatedAt: at(4)},
	}

	tree := AssembleTree([]domain.Branch{b1, b2}, []domain.Apartment{a1, a2}, rooms)

	require.Len(t, tree.Branches, 2)
	assert.Equal(t, "older", tree.Branches[0].Name)
	assert.Equal(t, "newer", tree.Branches[1].Name)

	older := tree.Branches[0]
	require.Len(t, older.Apartments, 2)
	assert.Equal(t, "a-early", older.Apartments[0].Name)
	assert.Equal(t, "a-late", older.Apartments[1].Name)
	assert.Equal(t, []string{"r1", "r3"}, roomNames(older.Apartments[0].Rooms))
	assert.Equal(t, []string{"d1", "d2"}, roomNames(older.Rooms))
}

func TestAssembleTree_EqualTimestampsKeepStableOrder(t *testing.T) {
	branch := domain.Branch{ID: uuid.New(), Name: "Pune", CreatedAt: at(0)}
	first := domain.Apartment{ID: uuid.New(), BranchID: branch.ID, Name: "first", CreatedAt: baseTime}
	second := domain.Apartment{ID: uuid.New(), BranchID: branch.ID, Name: "second", CreatedAt: baseTime}
	input := []domain.Apartment{first, second}

	for range 5 {
		tree := AssembleTree([]domain.Branch{branch}, input, nil)
		require.Len(t, tree.Branches[0].Apartments, 2)
		assert.Equal(t, "first", tree.Branches[0].Apartments[0].Name)
		assert.Equal(t, "second", tree.Branches[0].Apartments[1].Name)
	}
	// Вход не мутируется
	assert.Equal(t, "first", input[0].Name)
}

func TestAssembleTree_Geohash(t *testing.T) {
	withCoords := domain.Branch{ID: uuid.New(), Name: "geo", Latitude: ptr(12.9716), Longitude: ptr(77.5946)}
	without := domain.Branch{ID: uuid.New(), Name: "plain", Latitude: ptr(12.9716), CreatedAt: at(1)}

	tree := AssembleTree([]domain.Branch{withCoords, without}, nil, nil)

	assert.Len(t, tree.Branches[0].Geohash, GeohashPrecision)
	assert.Equal(t, "tdr1v9q", tree.Branches[0].Geohash)
	assert.Empty(t, tree.Branches[1].Geohash)
}

func TestAssembleTree_EveryRoomHasOneParent(t *testing.T) {
	branches := []domain.Branch{{ID: uuid.New(), CreatedAt: at(1)}, {ID: uuid.New(), CreatedAt: at(2)}}
	apartments := []domain.Apartment{
		{ID: uuid.New(), BranchID: branches[0].ID, CreatedAt: at(3)},
		{ID: uuid.New(), BranchID: branches[1].ID, CreatedAt: at(4)},
	}
	var rooms []domain.Room
	for i := range 20 {
		var owner domain.RoomOwner
		switch i % 4 {
		case 0:
			owner = domain.OwnedByApartment(apartments[i%2].ID)
		case 1:
			owner = domain.OwnedByBranch(branches[i%2].ID)
		case 2:
			owner = domain.NewRoomOwner(&apartments[0].ID, &branches[0].ID)
		default:
			owner = domain.OwnedByApartment(uuid.New())
		}
		rooms = append(rooms, domain.Room{ID: uuid.New(), Owner: owner, CreatedAt: at(20 - i)})
	}

	tree := AssembleTree(branches, apartments, rooms)

	seen := map[uuid.UUID]int{}
	for _, b := range tree.Branches {
		for _, r := range b.Rooms {
			seen[r.ID]++
		}
		for _, a := range b.Apartments {
			for _, r := range a.Rooms {
				seen[r.ID]++
			}
		}
	}
	assert.Len(t, seen, 10)
	for id, count := range seen {
		assert.Equal(t, 1, count, "room %s attached more than once", id)
	}
}

func roomNames(rooms []domain.Room) []string {
	out := make([]string, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Name)
	}
	return out
}
