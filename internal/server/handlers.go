package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/eljog/tracegraph/internal/graphdb"
	"github.com/eljog/tracegraph/internal/tracing"
)

// APIHandlers exposes HTTP handlers for the graph and tracing API.
type APIHandlers struct {
	logger *slog.Logger
	store  *graphdb.Store
	tracer *tracing.Service
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, store *graphdb.Store, tracer *tracing.Service) *APIHandlers {
	return &APIHandlers{
		logger: logger,
		store:  store,
		tracer: tracer,
	}
}

type nodeRequest struct {
	Label string `json:"label"`
	ID    string `json:"id"`
}

type propertyRequest struct {
	Qualifier string `json:"qualifier"`
	Name      string `json:"name"`
	Value     string `json:"value"`
}

type connectionRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type nodeResponse struct {
	Label       string            `json:"label"`
	ID          string            `json:"id"`
	Properties  map[string]string `json:"properties"`
	Connections []string          `json:"connections"`
}

type zoneResponse struct {
	PersonID string `json:"personId"`
	Zone     string `json:"zone"`
}

type statusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
	Nodes  int    `json:"nodes"`
}

func (h *APIHandlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	respondJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Nodes:  h.store.Len(),
	})
}

func (h *APIHandlers) handleNodes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createNode(w, r)
	case http.MethodGet:
		h.queryNodes(w, r.URL.Query().Get("q"))
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *APIHandlers) createNode(w http.ResponseWriter, r *http.Request) {
	var payload nodeRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Label == "" || payload.ID == "" {
		writeError(w, http.StatusBadRequest, "label and id are required")
		return
	}

	if err := h.store.AddNode(payload.Label, payload.ID); err != nil {
		h.writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, statusResponse{
		Status: "ok",
		ID:     payload.Label + ":" + payload.ID,
	})
}

func (h *APIHandlers) handleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	qualifier := r.URL.Query().Get("q")
	if qualifier == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	node, err := h.store.QueryByID(qualifier)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toNodeResponse(node))
}

func (h *APIHandlers) handleProperties(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, http.MethodPut)
		return
	}

	var payload propertyRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Qualifier == "" || payload.Name == "" {
		writeError(w, http.StatusBadRequest, "qualifier and name are required")
		return
	}

	if err := h.store.SetProperty(payload.Qualifier, payload.Name, payload.Value); err != nil {
		h.writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok", ID: payload.Qualifier})
}

func (h *APIHandlers) handleConnections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload connectionRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.From == "" || payload.To == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	if err := h.store.Connect(payload.From, payload.To); err != nil {
		h.writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (h *APIHandlers) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	h.queryNodes(w, r.URL.Query().Get("q"))
}

// queryNodes serves exact-match queries; an empty qualifier returns the
// entire store.
func (h *APIHandlers) queryNodes(w http.ResponseWriter, qualifier string) {
	nodes, err := h.store.QueryExact(qualifier)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toNodeResponses(nodes))
}

func (h *APIHandlers) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	query := r.URL.Query()
	qualifier := query.Get("q")
	if qualifier == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	filter := query.Get("filter")

	depth := -1 // store default
	if v := query.Get("depth"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid depth")
			return
		}
		depth = parsed
	}

	levels, err := h.store.GraphQuery(qualifier, filter, depth)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	response := make(map[string][]nodeResponse, len(levels))
	for level, nodes := range levels {
		response[strconv.Itoa(level)] = toNodeResponses(nodes)
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *APIHandlers) handleZone(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	personID := strings.TrimPrefix(r.URL.Path, "/zones/")
	personID = strings.Trim(personID, "/")
	if personID == "" {
		writeError(w, http.StatusBadRequest, "person ID is required")
		return
	}

	zone, err := h.tracer.Zone(personID)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, zoneResponse{
		PersonID: personID,
		Zone:     string(zone),
	})
}

func (h *APIHandlers) handleInfected(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	nodes, err := h.tracer.ListInfected()
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toNodeResponses(nodes))
}

// writeStoreError maps the store's error taxonomy onto HTTP statuses. All of
// these are caller errors the interactive clients recover from.
func (h *APIHandlers) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, graphdb.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, graphdb.ErrDuplicateEntity):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, graphdb.ErrQuerySyntax):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, graphdb.ErrInvalidOperation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("unexpected store failure", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toNodeResponse(node *graphdb.Node) nodeResponse {
	peers := node.Connections()
	connections := make([]string, 0, len(peers))
	for _, peer := range peers {
		connections = append(connections, peer.Label()+":"+peer.ID())
	}
	sort.Strings(connections)

	return nodeResponse{
		Label:       node.Label(),
		ID:          node.ID(),
		Properties:  node.Properties(),
		Connections: connections,
	}
}

func toNodeResponses(nodes []*graphdb.Node) []nodeResponse {
	out := make([]nodeResponse, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, toNodeResponse(node))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
