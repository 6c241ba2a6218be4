package rest

import (
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"
	"net/http"
)

// ListingHandler обслуживает публичное API каталога.
type ListingHandler struct {
	loader      usecases_port.ListingLoaderPort
	treeUC      usecases_port.GetListingTreeUseCasePort
	branchUC    usecases_port.GetBranchUseCasePort
	apartmentUC usecases_port.GetApartmentDetailsUseCasePort
	roomUC      usecases_port.GetRoomDetailsUseCasePort
	bookingUC   usecases_port.BuildBookingLinkUseCasePort
}

func NewListingHandler(
	loader usecases_port.ListingLoaderPort,
	treeUC usecases_port.GetListingTreeUseCasePort,
	branchUC usecases_port.GetBranchUseCasePort,
	apartmentUC usecases_port.GetApartmentDetailsUseCasePort,
	roomUC usecases_port.GetRoomDetailsUseCasePort,
	bookingUC usecases_port.BuildBookingLinkUseCasePort,
) *ListingHandler {
	return &ListingHandler{
		loader:      loader,
		treeUC:      treeUC,
		branchUC:    branchUC,
		apartmentUC: apartmentUC,
		roomUC:      roomUC,
		bookingUC:   bookingUC,
	}
}

// GetListings обрабатывает GET /api/v1/listings
func (h *ListingHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetListings"})

	snapshot, err := h.treeUC.Execute(r.Context())
	if err != nil {
		writeDomainError(w, logger, err, "Failed to load listings")
		return
	}
	RespondWithJSON(w, http.StatusOK, toListingsResponse(*snapshot))
}

// GetBranch обрабатывает GET /api/v1/branches/{branchID}
func (h *ListingHandler) GetBranch(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetBranch"})

	branchID, err := parseUUIDParam(r, "branchID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid branch ID format")
		return
	}

	node, err := h.branchUC.Execute(r.Context(), branchID)
	if err != nil {
		writeDomainError(w, logger, err, "Failed to get branch")
		return
	}
	RespondWithJSON(w, http.StatusOK, toBranchNodeResponse(*node))
}

// GetApartment обрабатывает GET /api/v1/apartments/{apartmentID}
func (h *ListingHandler) GetApartment(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetApartment"})

	apartmentID, err := parseUUIDParam(r, "apartmentID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid apartment ID format")
		return
	}

	details, err := h.apartmentUC.Execute(r.Context(), apartmentID)
	if err != nil {
		writeDomainError(w, logger, err, "Failed to get apartment details")
		return
	}
	RespondWithJSON(w, http.StatusOK, toApartmentDetailsResponse(*details))
}

// GetRoom обрабатывает GET /api/v1/rooms/{roomID}
func (h *ListingHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetRoom"})

	roomID, err := parseUUIDParam(r, "roomID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid room ID format")
		return
	}

	details, err := h.roomUC.Execute(r.Context(), roomID)
	if err != nil {
		writeDomainError(w, logger, err, "Failed to get room details")
		return
	}
	RespondWithJSON(w, http.StatusOK, toRoomDetailsResponse(*details))
}

// GetBookingLink обрабатывает GET /api/v1/booking-link?apartment_id=&room_id=
func (h *ListingHandler) GetBookingLink(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetBookingLink"})

	apartmentID, err := parseOptionalUUIDQuery(r, "apartment_id")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid apartment_id format")
		return
	}
	roomID, err := parseOptionalUUIDQuery(r, "room_id")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid room_id format")
		return
	}

	link, err := h.bookingUC.Execute(r.Context(), apartmentID, roomID)
	if err != nil {
		writeDomainError(w, logger, err, "Failed to build booking link")
		return
	}
	RespondWithJSON(w, http.StatusOK, toBookingLinkResponse(*link))
}

// Health не запускает загрузку, только сообщает состояние агрегатора
func (h *ListingHandler) Health(w http.ResponseWriter, r *http.Request) {
	snapshot := h.loader.Snapshot()
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"listings_status": string(snapshot.Status),
		"sequence":        snapshot.Sequence,
	})
}
