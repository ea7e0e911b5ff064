package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/skillfeed/skillfeed/pkg/api/auth"
	"github.com/skillfeed/skillfeed/pkg/catalog"
	"github.com/skillfeed/skillfeed/pkg/events"
	"github.com/skillfeed/skillfeed/pkg/lib"
	"github.com/skillfeed/skillfeed/pkg/ranking"
)

type Item struct {
	ID          int64     `json:"id"`
	SellerID    int64     `json:"sellerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Active      bool      `json:"active"`
	ImageURL    string    `json:"imageUrl"`
	Address     string    `json:"address"`
	CityName    string    `json:"cityName"`
	ViewCount   int       `json:"viewCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type RecommendedItem struct {
	Item
	Score float64 `json:"score"`
}

type RecommendationsResponse struct {
	Items      []RecommendedItem `json:"items"`
	NextCursor *string           `json:"nextCursor,omitempty"`
}

func (s *Server) listRecommendations(w http.ResponseWriter, r *http.Request) {
	var userID *int64
	if user, ok := auth.UserFromContext(r.Context()); ok {
		userID = &user.UserID
	}

	out, err := s.ranker.Rank(r.Context(), ranking.Request{
		UserID:   userID,
		Cursor:   r.URL.Query().Get("cursor"),
		PageSize: queryInt(r, "size"),
	})
	if err != nil {
		s.internalError(w, err, "rank recommendations")
		return
	}

	resp := RecommendationsResponse{Items: make([]RecommendedItem, 0, len(out.Items))}
	for _, scored := range out.Items {
		resp.Items = append(resp.Items, RecommendedItem{
			Item:  serializeItem(scored.Item),
			Score: scored.Score,
		})
	}
	if out.NextCursor != "" {
		resp.NextCursor = &out.NextCursor
	}

	s.serializeRes(w, resp)
}

type ItemPageResponse struct {
	Items    []Item `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

func (s *Server) searchItems(w http.ResponseWriter, r *http.Request) {
	var viewerID *int64
	if user, ok := auth.UserFromContext(r.Context()); ok {
		viewerID = &user.UserID
	}

	out, err := s.catalog.Search(r.Context(), catalog.SearchRequest{
		Keyword:  r.URL.Query().Get("keyword"),
		Category: r.URL.Query().Get("category"),
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "size"),
		ViewerID: viewerID,
	})
	if err != nil {
		s.serviceError(w, err, "search items")
		return
	}

	s.serializeRes(w, ItemPageResponse{
		Items:    serializeItems(out.Items),
		Total:    out.Total,
		Page:     out.Page,
		PageSize: out.PageSize,
	})
}

func (s *Server) suggestItems(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.catalog.Suggest(r.Context(), r.URL.Query().Get("q"), queryInt(r, "limit"))
	if err != nil {
		s.serviceError(w, err, "suggest items")
		return
	}

	s.serializeRes(w, map[string][]string{"suggestions": suggestions})
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.badRequest(w, err, "parse item id")
		return
	}

	var viewerID *int64
	if user, ok := auth.UserFromContext(r.Context()); ok {
		viewerID = &user.UserID
	}

	item, err := s.catalog.Get(r.Context(), id, viewerID)
	if err != nil {
		s.serviceError(w, err, "get item")
		return
	}

	s.serializeRes(w, serializeItem(item))
}

type CreateItemRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Address     string  `json:"address"`
	CityName    string  `json:"cityName"`
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		s.unauthorized(w)
		return
	}

	var req CreateItemRequest
	if err := deserializeReq(r, &req); err != nil {
		s.badRequest(w, err, "deserialize request")
		return
	}

	item, err := s.catalog.Create(r.Context(), catalog.CreateRequest{
		SellerID:    user.UserID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Address:     req.Address,
		CityName:    req.CityName,
	})
	if err != nil {
		s.serviceError(w, err, "create item")
		return
	}

	s.serializeRes(w, serializeItem(item))
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		s.unauthorized(w)
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.badRequest(w, err, "parse item id")
		return
	}

	var req CreateItemRequest
	if err := deserializeReq(r, &req); err != nil {
		s.badRequest(w, err, "deserialize request")
		return
	}

	item, err := s.catalog.Update(r.Context(), catalog.UpdateRequest{
		ID:          id,
		SellerID:    user.UserID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Address:     req.Address,
		CityName:    req.CityName,
	})
	if err != nil {
		s.serviceError(w, err, "update item")
		return
	}

	s.serializeRes(w, serializeItem(item))
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		s.unauthorized(w)
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.badRequest(w, err, "parse item id")
		return
	}

	if err := s.catalog.Remove(r.Context(), id, user.UserID); err != nil {
		s.serviceError(w, err, "delete item")
		return
	}

	s.serializeRes(w, map[string]string{"message": "Item deleted successfully"})
}

type SetItemStatusRequest struct {
	Active bool `json:"active"`
}

func (s *Server) setItemStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		s.unauthorized(w)
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.badRequest(w, err, "parse item id")
		return
	}

	var req SetItemStatusRequest
	if err := deserializeReq(r, &req); err != nil {
		s.badRequest(w, err, "deserialize request")
		return
	}

	if err := s.catalog.SetStatus(r.Context(), id, user.UserID, req.Active); err != nil {
		s.serviceError(w, err, "set item status")
		return
	}

	s.serializeRes(w, map[string]bool{"active": req.Active})
}

func (s *Server) listOwnItems(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		s.unauthorized(w)
		return
	}

	items, err := s.catalog.ListMine(r.Context(), user.UserID)
	if err != nil {
		s.serviceError(w, err, "list own items")
		return
	}

	s.serializeRes(w, serializeItems(items))
}

type LogEventRequest struct {
	Kind    string `json:"kind"`
	ItemID  *int64 `json:"itemId,omitempty"`
	Keyword string `json:"keyword,omitempty"`
}

func (s *Server) logEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		s.unauthorized(w)
		return
	}

	var req LogEventRequest
	if err := deserializeReq(r, &req); err != nil {
		s.badRequest(w, err, "deserialize request")
		return
	}

	err := s.recorder.Record(r.Context(), user.UserID, events.Kind(req.Kind), req.ItemID, req.Keyword)
	if err != nil {
		s.serviceError(w, err, "record event")
		return
	}

	s.serializeRes(w, map[string]bool{"recorded": true})
}

type LogSearchRequest struct {
	Keyword string `json:"keyword"`
}

func (s *Server) logSearchEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		s.unauthorized(w)
		return
	}

	var req LogSearchRequest
	if err := deserializeReq(r, &req); err != nil {
		s.badRequest(w, err, "deserialize request")
		return
	}
	if lib.NormalizeText(req.Keyword) == "" {
		s.badRequest(w, errors.New("keyword is required"), "validate search event")
		return
	}

	err := s.recorder.Record(r.Context(), user.UserID, events.KindSearch, nil, req.Keyword)
	if err != nil {
		s.serviceError(w, err, "record search event")
		return
	}

	s.serializeRes(w, map[string]bool{"recorded": true})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.serializeRes(w, map[string]string{"status": "ok"})
}

func deserializeReq[Req any](r *http.Request, req *Req) error {
	contentType := r.Header.Get("Content-Type")
	if contentType != "application/json" {
		return fmt.Errorf("unsupported content type: %s", contentType)
	}

	reqBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}

	err = json.Unmarshal(reqBytes, req)
	if err != nil {
		return fmt.Errorf("deserialize request body: %w", err)
	}

	return nil
}

func (s *Server) serializeRes(w http.ResponseWriter, res any) {
	w.Header().Add("Content-Type", "application/json")

	if res == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	err := json.NewEncoder(w).Encode(res)
	if err != nil {
		s.internalError(w, err, "serialize response")
	}
}

// serviceError maps domain errors onto status codes; anything
// unrecognized is a 500.
func (s *Server) serviceError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		s.logger.Debug().Err(err).Msg(msg)
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, events.ErrInvalidKind):
		s.badRequest(w, err, msg)
	default:
		var ve lib.ValidationErrors
		if errors.As(err, &ve) {
			s.badRequest(w, err, msg)
			return
		}
		s.internalError(w, err, msg)
	}
}

func (s *Server) internalError(w http.ResponseWriter, err error, msg string) {
	s.logger.Err(err).Msg(msg)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (s *Server) badRequest(w http.ResponseWriter, err error, msg string) {
	s.logger.Err(err).Msg(msg)
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func (s *Server) unauthorized(w http.ResponseWriter) {
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func serializeItems(in []*catalog.Item) []Item {
	out := make([]Item, len(in))
	for i, item := range in {
		out[i] = serializeItem(item)
	}
	return out
}

func serializeItem(in *catalog.Item) Item {
	return Item{
		ID:          in.ID,
		SellerID:    in.SellerID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Active:      in.Active,
		ImageURL:    in.ImageURL,
		Address:     in.Address,
		CityName:    in.CityName,
		ViewCount:   in.ViewCount,
		CreatedAt:   in.CreatedAt,
		UpdatedAt:   in.UpdatedAt,
	}
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id path value: %w", err)
	}
	return id, nil
}

// queryInt returns 0 for absent or malformed values; downstream
// defaults apply.
func queryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
