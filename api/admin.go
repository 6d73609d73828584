package api

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taxisafar/sitekit/catalog"
	"github.com/taxisafar/sitekit/coupon"
)

func (h *Handler) adminListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.themes.ListAll(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, themes)
}

type themeRequest struct {
	ThemeID            string         `json:"themeId"`
	Name               string         `json:"name"`
	Tag                string         `json:"tag"`
	PreviewURL         string         `json:"previewUrl"`
	Description        string         `json:"description"`
	PricePlans         []catalog.Plan `json:"pricePlans"`
	Active             *bool          `json:"isActive"`
	PreviewImageBase64 string         `json:"previewImageBase64,omitempty"`
}

func (r themeRequest) previewImage(w http.ResponseWriter) ([]byte, bool) {
	if r.PreviewImageBase64 == "" {
		return nil, true
	}
	img, err := base64.StdEncoding.DecodeString(r.PreviewImageBase64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid preview image encoding")
		return nil, false
	}
	return img, true
}

func (h *Handler) adminCreateTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	img, ok := req.previewImage(w)
	if !ok {
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	theme, err := h.themes.CreateTheme(r.Context(), catalog.CreateThemeParams{
		Slug:         req.ThemeID,
		Name:         req.Name,
		Tag:          req.Tag,
		PreviewURL:   req.PreviewURL,
		Description:  req.Description,
		PricePlans:   req.PricePlans,
		Active:       active,
		PreviewImage: img,
	})
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, theme)
}

type themeUpdateRequest struct {
	Name               *string        `json:"name"`
	Tag                *string        `json:"tag"`
	PreviewURL         *string        `json:"previewUrl"`
	Description        *string        `json:"description"`
	PricePlans         []catalog.Plan `json:"pricePlans"`
	Active             *bool          `json:"isActive"`
	PreviewImageBase64 string         `json:"previewImageBase64,omitempty"`
}

func (h *Handler) adminUpdateTheme(w http.ResponseWriter, r *http.Request) {
	var req themeUpdateRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var img []byte
	if req.PreviewImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.PreviewImageBase64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid preview image encoding")
			return
		}
		img = decoded
	}

	theme, err := h.themes.UpdateTheme(r.Context(), chi.URLParam(r, "themeID"), catalog.UpdateThemeParams{
		Name:         req.Name,
		Tag:          req.Tag,
		PreviewURL:   req.PreviewURL,
		Description:  req.Description,
		PricePlans:   req.PricePlans,
		Active:       req.Active,
		PreviewImage: img,
	})
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, theme)
}

func (h *Handler) adminToggleTheme(w http.ResponseWriter, r *http.Request) {
	active, err := h.themes.ToggleActive(r.Context(), chi.URLParam(r, "themeID"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"isActive": active})
}

func (h *Handler) adminDeleteTheme(w http.ResponseWriter, r *http.Request) {
	if err := h.themes.DeleteTheme(r.Context(), chi.URLParam(r, "themeID")); err != nil {
		fail(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "theme deleted", nil)
}

func (h *Handler) adminListCoupons(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))

	coupons, total, err := h.coupons.List(r.Context(), page, perPage)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"coupons": coupons,
		"total":   total,
	})
}

type couponRequest struct {
	Code              string      `json:"code"`
	Type              coupon.Type `json:"type"`
	Value             int64       `json:"value"`
	MaxDiscount       int64       `json:"maxDiscount"`
	MinOrderValue     int64       `json:"minOrderValue"`
	Description       string      `json:"description"`
	StartsAt          time.Time   `json:"startsAt"`
	ExpiresAt         time.Time   `json:"expiresAt"`
	Active            bool        `json:"isActive"`
	TotalUsageLimit   int         `json:"totalUsageLimit"`
	PerUserUsageLimit int         `json:"perUserUsageLimit"`
}

func (h *Handler) adminCreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.coupons.Create(r.Context(), coupon.CreateParams{
		Code:              req.Code,
		Type:              req.Type,
		Value:             req.Value,
		MaxDiscount:       req.MaxDiscount,
		MinOrderValue:     req.MinOrderValue,
		Description:       req.Description,
		StartsAt:          req.StartsAt,
		ExpiresAt:         req.ExpiresAt,
		Active:            req.Active,
		TotalUsageLimit:   req.TotalUsageLimit,
		PerUserUsageLimit: req.PerUserUsageLimit,
	})
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, created)
}

func (h *Handler) adminGetCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.coupons.Get(r.Context(), chi.URLParam(r, "couponID"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, c)
}

type couponUpdateRequest struct {
	Type              *coupon.Type `json:"type"`
	Value             *int64       `json:"value"`
	MaxDiscount       *int64       `json:"maxDiscount"`
	MinOrderValue     *int64       `json:"minOrderValue"`
	Description       *string      `json:"description"`
	StartsAt          *time.Time   `json:"startsAt"`
	ExpiresAt         *time.Time   `json:"expiresAt"`
	Active            *bool        `json:"isActive"`
	TotalUsageLimit   *int         `json:"totalUsageLimit"`
	PerUserUsageLimit *int         `json:"perUserUsageLimit"`
}

func (h *Handler) adminUpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponUpdateRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.coupons.Update(r.Context(), chi.URLParam(r, "couponID"), coupon.UpdateParams{
		Type:              req.Type,
		Value:             req.Value,
		MaxDiscount:       req.MaxDiscount,
		MinOrderValue:     req.MinOrderValue,
		Description:       req.Description,
		StartsAt:          req.StartsAt,
		ExpiresAt:         req.ExpiresAt,
		Active:            req.Active,
		TotalUsageLimit:   req.TotalUsageLimit,
		PerUserUsageLimit: req.PerUserUsageLimit,
	})
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, updated)
}

func (h *Handler) adminToggleCoupon(w http.ResponseWriter, r *http.Request) {
	active, err := h.coupons.ToggleActive(r.Context(), chi.URLParam(r, "couponID"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"isActive": active})
}

func (h *Handler) adminDeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.Delete(r.Context(), chi.URLParam(r, "couponID")); err != nil {
		fail(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "coupon deleted", nil)
}
