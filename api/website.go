package api

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taxisafar/sitekit/website"
)

func driverID(r *http.Request) string {
	return chi.URLParam(r, "driverID")
}

func indexParam(r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	return i, err == nil
}

type getOrCreateWebsiteRequest struct {
	ThemeID string `json:"themeId"`
}

func (h *Handler) getOrCreateWebsite(w http.ResponseWriter, r *http.Request) {
	var req getOrCreateWebsiteRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, err := h.sites.GetOrCreate(r.Context(), driverID(r), req.ThemeID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, site)
}

func (h *Handler) getWebsite(w http.ResponseWriter, r *http.Request) {
	site, err := h.sites.Get(r.Context(), driverID(r))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, site)
}

func (h *Handler) deleteWebsite(w http.ResponseWriter, r *http.Request) {
	if err := h.sites.Delete(r.Context(), driverID(r)); err != nil {
		fail(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "website deleted", nil)
}

func (h *Handler) getOnboarding(w http.ResponseWriter, r *http.Request) {
	step, err := h.sites.Onboarding(r.Context(), driverID(r))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"step": step})
}

func (h *Handler) getPublicSite(w http.ResponseWriter, r *http.Request) {
	site, err := h.sites.GetPublic(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, site)
}

type basicInfoRequest struct {
	website.BasicInfo
	LogoBase64 string `json:"logoBase64,omitempty"`
}

func (h *Handler) updateBasicInfo(w http.ResponseWriter, r *http.Request) {
	var req basicInfoRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params := website.BasicInfoParams{BasicInfo: req.BasicInfo}
	if req.LogoBase64 != "" {
		logo, err := base64.StdEncoding.DecodeString(req.LogoBase64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid logo encoding")
			return
		}
		params.Logo = logo
	}

	site, err := h.sites.UpdateBasicInfo(r.Context(), driverID(r), params)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, site)
}

func (h *Handler) replacePackages(w http.ResponseWriter, r *http.Request) {
	var packages []website.Package
	if err := decode(w, r, &packages); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, err := h.sites.ReplacePackages(r.Context(), driverID(r), packages)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, site)
}

func (h *Handler) addPackage(w http.ResponseWriter, r *http.Request) {
	var p website.Package
	if err := decode(w, r, &p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, err := h.sites.AddPackage(r.Context(), driverID(r), p)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, site)
}

func (h *Handler) deletePackage(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid index")
		return
	}

	site, err := h.sites.DeletePackage(r.Context(), driverID(r), index)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, site)
}

func (h *Handler) replacePopularPrices(w http.ResponseWriter, r *http.Request) {
	var prices []website.PopularPrice
	if err := decode(w, r, &prices); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, err := h.sites.ReplacePopularPrices(r.Context(), driverID(r), prices)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, site)
}

func (h *Handler) addPopularPrice(w http.ResponseWriter, r *http.Request) {
	var p website.PopularPrice
	if err := decode(w, r, &p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, err := h.sites.AddPopularPrice(r.Context(), driverID(r), p)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, site)
}

func (h *Handler) deletePopularPrice(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid index")
		return
	}

	site, err := h.sites.DeletePopularPrice(r.Context(), driverID(r), index)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, site)
}

func (h *Handler) replaceReviews(w http.ResponseWriter, r *http.Request) {
	var reviews []website.Review
	if err := decode(w, r, &reviews); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, err := h.sites.ReplaceReviews(r.Context(), driverID(r), reviews)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, site)
}

func (h *Handler) addReview(w http.ResponseWriter, r *http.Request) {
	var review website.Review
	if err := decode(w, r, &review); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, err := h.sites.AddReview(r.Context(), driverID(r), review)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, site)
}

func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid index")
		return
	}

	site, err := h.sites.DeleteReview(r.Context(), driverID(r), index)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, site)
}

func (h *Handler) updateSections(w http.ResponseWriter, r *http.Request) {
	var sections website.Sections
	if err := decode(w, r, &sections); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, err := h.sites.UpdateSections(r.Context(), driverID(r), sections)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, site)
}

func (h *Handler) updateSocialLinks(w http.ResponseWriter, r *http.Request) {
	var links website.SocialLinks
	if err := decode(w, r, &links); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, err := h.sites.UpdateSocialLinks(r.Context(), driverID(r), links)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, site)
}

type setLiveRequest struct {
	Live bool `json:"live"`
}

func (h *Handler) setLive(w http.ResponseWriter, r *http.Request) {
	var req setLiveRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, err := h.sites.SetLive(r.Context(), driverID(r), req.Live)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, site)
}

func (h *Handler) generateQR(w http.ResponseWriter, r *http.Request) {
	site, err := h.sites.GenerateQR(r.Context(), driverID(r))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, site.QR)
}
