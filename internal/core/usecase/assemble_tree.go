package usecase

import (
	"listing-service/internal/core/domain"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
)

// GeohashPrecision - точность геохэша филиала (~150 м), достаточна для кластеров на карте.
const GeohashPrecision = 7

// AssembleTree собирает дерево из трех плоских коллекций.
// Квартиры без филиала отбрасываются, комнаты с неразрешимым
// или пустым владельцем исключаются. Все соседние коллекции
// упорядочены по created_at по возрастанию; при равенстве
// сохраняется порядок входа.
func AssembleTree(branches []domain.Branch, apartments []domain.Apartment, rooms []domain.Room) domain.ListingTree {
	sortedBranches := sortByCreatedAt(branches, func(b domain.Branch) time.Time { return b.CreatedAt })

	nodes := make([]domain.BranchNode, len(sortedBranches))
	branchIndex := make(map[uuid.UUID]int, len(sortedBranches))
	for i, b := range sortedBranches {
		nodes[i] = domain.BranchNode{
			Branch:     b,
			Apartments: []domain.ApartmentNode{},
			Rooms:      []domain.Room{},
		}
		if b.HasCoordinates() {
			nodes[i].Geohash = geohash.EncodeWithPrecision(*b.Latitude, *b.Longitude, GeohashPrecision)
		}
		// При дубликатах id побеждает первый филиал
		if _, exists := branchIndex[b.ID]; !exists {
			branchIndex[b.ID] = i
		}
	}

	// Шаг 1: раскладываем комнаты по владельцам
	apartmentRooms := make(map[uuid.UUID][]domain.Room)
	branchRooms := make(map[uuid.UUID][]domain.Room)
	for _, r := range rooms {
		switch r.Owner.Kind() {
		case domain.OwnerApartment:
			apartmentRooms[r.Owner.ID()] = append(apartmentRooms[r.Owner.ID()], r)
		case domain.OwnerBranch:
			branchRooms[r.Owner.ID()] = append(branchRooms[r.Owner.ID()], r)
		}
	}

	// Шаг 2: привязываем квартиры к филиалам
	sortedApartments := sortByCreatedAt(apartments, func(a domain.Apartment) time.Time { return a.CreatedAt })
	for _, a := range sortedApartments {
		idx, ok := branchIndex[a.BranchID]
		if !ok {
			continue
		}
		if a.BranchName == "" {
			a.BranchName = nodes[idx].Name
		}
		nodes[idx].Apartments = append(nodes[idx].Apartments, domain.ApartmentNode{
			Apartment: a,
			Rooms:     sortRooms(apartmentRooms[a.ID]),
		})
	}

	// Шаг 3: прямые комнаты филиалов
	for i := range nodes {
		if i != branchIndex[nodes[i].ID] {
			continue
		}
		nodes[i].Rooms = sortRooms(branchRooms[nodes[i].ID])
	}

	return domain.ListingTree{Branches: nodes}
}

func sortRooms(rooms []domain.Room) []domain.Room {
	if len(rooms) == 0 {
		return []domain.Room{}
	}
	return sortByCreatedAt(rooms, func(r domain.Room) time.Time { return r.CreatedAt })
}

// sortByCreatedAt возвращает отсортированную копию, не меняя вход.
func sortByCreatedAt[T any](items []T, createdAt func(T) time.Time) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return createdAt(a).Compare(createdAt(b))
	})
	return out
}
