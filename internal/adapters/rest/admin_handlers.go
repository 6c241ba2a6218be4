package rest

import (
	"fmt"
	"io"
	"listing-service/internal/contextkeys"
	"listing-service/internal/contracts"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"
	"net/http"
)

const maxMultipartMemory = 16 << 20

// AdminHandler обслуживает защищенное API администрирования каталога.
type AdminHandler struct {
	branches   usecases_port.ManageBranchesUseCasePort
	apartments usecases_port.ManageApartmentsUseCasePort
	rooms      usecases_port.ManageRoomsUseCasePort
	uploadUC   usecases_port.UploadImageUseCasePort
	refreshUC  usecases_port.RefreshListingsUseCasePort
}

func NewAdminHandler(
	branches usecases_port.ManageBranchesUseCasePort,
	apartments usecases_port.ManageApartmentsUseCasePort,
	rooms usecases_port.ManageRoomsUseCasePort,
	uploadUC usecases_port.UploadImageUseCasePort,
	refreshUC usecases_port.RefreshListingsUseCasePort,
) *AdminHandler {
	return &AdminHandler{
		branches:   branches,
		apartments: apartments,
		rooms:      rooms,
		uploadUC:   uploadUC,
		refreshUC:  refreshUC,
	}
}

func (h *AdminHandler) handlerLogger(r *http.Request, name string) port.LoggerPort {
	return contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": name})
}

// --- Филиалы ---

func (h *AdminHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger(r, "ListBranches")

	branches, err := h.branches.List(r.Context())
	if err != nil {
		writeDomainError(w, logger, err, "Failed to list branches")
		return
	}
	resp := make([]BranchResponse, len(branches))
	for i, b := range branches {
		resp[i] = toBranchResponse(b)
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger(r, "CreateBranch")

	var req BranchRequest
	if err := decodeValidated(r, contracts.AdminBranchRequest, &req); err != nil {
		writeDomainError(w, logger, err, "Failed to read request")
		return
	}
	branch, err := h.branches.Create(r.Context(), req.toDomain())
	if err != nil {
		writeDomainError(w, logger, err, "Failed to create branch")
		return
	}
	RespondWithJSON(w, http.StatusCreated, toBranchResponse(*branch))
}

func (h *AdminHandler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger(r, "UpdateBranch")

	id, err := parseUUIDParam(r, "branchID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid branch ID format")
		return
	}
	var req BranchRequest
	if err := decodeValidated(r, contracts.AdminBranchRequest, &req); err != nil {
		writeDomainError(w, logger, err, "Failed to read request")
		return
	}
	branch, err := h.branches.Update(r.Context(), id, req.toDomain())
	if err != nil {
		writeDomainError(w, logger, err, "Failed to update branch")
		return
	}
	RespondWithJSON(w, http.StatusOK, toBranchResponse(*branch))
}

func (h *AdminHandler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger(r, "DeleteBranch")

	id, err := parseUUIDParam(r, "branchID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid branch ID format")
		return
	}
	if err := h.branches.Delete(r.Context(), id); err != nil {
		writeDomainError(w, logger, err, "Failed to delete branch")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Квартиры ---

func (h *AdminHandler) ListApartments(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger(r, "ListApartments")

	branchID, err := parseOptionalUUIDQuery(r, "branch_id")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid branch_id format")
		return
	}
	apartments, err := h.apartments.List(r.Context(), domain.ApartmentFilter{BranchID: branchID})
	if err != nil {
		writeDomainError(w, logger, err, "Failed to list apartments")
		return
	}
	resp := make([]ApartmentResponse, len(apartments))
	for i, a := range apartments {
		resp[i] = toApartmentResponse(a)
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) CreateApartment(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger(r, "CreateApartment")

	var req ApartmentRequest
	if err := decodeValidated(r, contracts.AdminApartmentRequest, &req); err != nil {
		writeDomainError(w, logger, err, "Failed to read request")
		return
	}
	apartment, err := h.apartments.Create(r.Context(), req.toDomain())
	if err != nil {
		writeDomainError(w, logger, err, "Failed to create apartment")
		return
	}
	RespondWithJSON(w, http.StatusCreated, toApartmentResponse(*apartment))
}

func (h *AdminHandler) UpdateApartment(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger(r, "UpdateApartment")

	id, err := parseUUIDParam(r, "apartmentID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid apartment ID format")
		return
	}
	var req ApartmentRequest
	if err := decodeValidated(r, contracts.AdminApartmentRequest, &req); err != nil {
		writeDomainError(w, logger, err, "Failed to read request")
		return
	}
	apartment, err := h.apartments.Update(r.Context(), id, req.toDomain())
	if err != nil {
		writeDomainError(w, logger, err, "Failed to update apartment")
		return
	}
	RespondWithJSON(w, http.StatusOK, toApartmentResponse(*apartment))
}

func (h *AdminHandler) DeleteApartment(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger(r, "DeleteApartment")

	id, err := parseUUIDParam(r, "apartmentID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid apartment ID format")
		return
	}
	if err := h.apartments.Delete(r.Context(), id); err != nil {
		writeDomainError(w, logger, err, "Failed to delete apartment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Комнаты ---

func (h *AdminHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger(r, "ListRooms")

	apartmentID, err := parseOptionalUUIDQuery(r, "apartment_id")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid apartment_id format")
		return
	}
	branchID, err := parseOptionalUUIDQuery(r, "branch_id")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid branch_id format")
		return
	}
	rooms, err := h.rooms.List(r.Context(), domain.RoomFilter{ApartmentID: apartmentID, BranchID: branchID})
	if err != nil {
		writeDomainError(w, logger, err, "Failed to list rooms")
		return
	}
	RespondWithJSON(w, http.StatusOK, toRoomResponses(rooms))
}

func (h *AdminHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger(r, "CreateRoom")

	var req RoomRequest
	if err := decodeValidated(r, contracts.AdminRoomRequest, &req); err != nil {
		writeDomainError(w, logger, err, "Failed to read request")
		return
	}
	room, err := h.rooms.Create(r.Context(), req.toDomain())
	if err != nil {
		writeDomainError(w, logger, err, "Failed to create room")
		return
	}
	RespondWithJSON(w, http.StatusCreated, toRoomResponse(*room))
}

func (h *AdminHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger(r, "UpdateRoom")

	id, err := parseUUIDParam(r, "roomID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid room ID format")
		return
	}
	var req RoomRequest
	if err := decodeValidated(r, contracts.AdminRoomRequest, &req); err != nil {
		writeDomainError(w, logger, err, "Failed to read request")
		return
	}
	room, err := h.rooms.Update(r.Context(), id, req.toDomain())
	if err != nil {
		writeDomainError(w, logger, err, "Failed to update room")
		return
	}
	RespondWithJSON(w, http.StatusOK, toRoomResponse(*room))
}

func (h *AdminHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger(r, "DeleteRoom")

	id, err := parseUUIDParam(r, "roomID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid room ID format")
		return
	}
	if err := h.rooms.Delete(r.Context(), id); err != nil {
		writeDomainError(w, logger, err, "Failed to delete room")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Изображения и обновление каталога ---

// UploadImage обрабатывает POST /admin/images?folder=apartments|rooms (multipart, поле file)
func (h *AdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger(r, "UploadImage")

	if h.uploadUC == nil {
		WriteJSONError(w, http.StatusServiceUnavailable, "Image storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartMemory+(1<<20))
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeDomainError(w, logger, fmt.Errorf("failed to read uploaded file: %w", err), "Failed to read uploaded file")
		return
	}

	url, err := h.uploadUC.Execute(r.Context(), domain.ImageUpload{
		Folder:      r.URL.Query().Get("folder"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		writeDomainError(w, logger, err, "Failed to upload image")
		return
	}
	RespondWithJSON(w, http.StatusCreated, ImageUploadResponse{URL: url})
}

// RefreshListings обрабатывает POST /admin/listings/refresh
func (h *AdminHandler) RefreshListings(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger(r, "RefreshListings")

	snapshot, err := h.refreshUC.Execute(r.Context(), "admin")
	if err != nil {
		writeDomainError(w, logger, err, "Failed to refresh listings")
		return
	}
	RespondWithJSON(w, http.StatusOK, toListingsResponse(*snapshot))
}
