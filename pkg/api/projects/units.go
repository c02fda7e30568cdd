package projects

import (
	"fmt"
	"net/http"
	"strings"

	"obra_tracker/pkg/api/response"
	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/models"
	"obra_tracker/pkg/core/utils"

	"github.com/gorilla/mux"
)

func (h *Handler) HandleListUnits(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.project(w, r)
	if !ok {
		return
	}
	response.RespondWithJSON(w, http.StatusOK, p.Units)
}

func (h *Handler) HandleCreateUnit(w http.ResponseWriter, r *http.Request) {
	p, userID, ok := h.project(w, r)
	if !ok {
		return
	}
	var req UnitRequest
	if !response.DecodeAndValidate(w, r, &req) {
		return
	}
	u := &finance.Unit{
		ProjectID:          p.ID,
		Identifier:         strings.TrimSpace(req.Identifier),
		Area:               req.Area,
		Cost:               req.Cost,
		Status:             finance.StatusAvailable,
		EstimatedSaleValue: req.EstimatedSaleValue,
	}
	if err := h.Stores.Units.CreateUnit(r.Context(), u); err != nil {
		response.HandleAppError(w, err)
		return
	}
	h.audit(r.Context(), p.ID, userID, models.AuditUnitCreated,
		fmt.Sprintf("Unit %s created (%.2f m², cost %.2f)", u.Identifier, u.Area, u.Cost))
	response.RespondWithJSON(w, http.StatusCreated, u)
}

func (h *Handler) HandleGenerateUnits(w http.ResponseWriter, r *http.Request) {
	p, userID, ok := h.project(w, r)
	if !ok {
		return
	}
	var spec finance.BatchSpec
	if !response.DecodeAndValidate(w, r, &spec) {
		return
	}
	units := finance.GenerateUnits(spec)
	for i := range units {
		units[i].ProjectID = p.ID
	}
	if err := h.Stores.Units.CreateUnits(r.Context(), units); err != nil {
		response.HandleAppError(w, err)
		return
	}
	h.audit(r.Context(), p.ID, userID, models.AuditUnitsGenerated,
		fmt.Sprintf("%d units generated (%s to %s)", len(units), units[0].Identifier, units[len(units)-1].Identifier))
	response.RespondWithJSON(w, http.StatusCreated, units)
}

// unit finds {unitId} inside the already loaded project.
func unit(w http.ResponseWriter, r *http.Request, p *finance.Project) (*finance.Unit, bool) {
	id := mux.Vars(r)["unitId"]
	for i := range p.Units {
		if p.Units[i].ID == id {
			return &p.Units[i], true
		}
	}
	response.HandleAppError(w, fmt.Errorf("unit %s: %w", id, utils.ErrUnitNotFound))
	return nil, false
}

func (h *Handler) HandleUpdateUnit(w http.ResponseWriter, r *http.Request) {
	p, userID, ok := h.project(w, r)
	if !ok {
		return
	}
	u, ok := unit(w, r, p)
	if !ok {
		return
	}
	var req UpdateUnitRequest
	if !response.DecodeAndValidate(w, r, &req) {
		return
	}

	var changes []string
	if req.Identifier != nil {
		id := strings.TrimSpace(*req.Identifier)
		if id != u.Identifier {
			changes = append(changes, fmt.Sprintf("identifier %s -> %s", u.Identifier, id))
			u.Identifier = id
		}
	}
	if req.Area != nil && *req.Area != u.Area {
		changes = append(changes, fmt.Sprintf("area %.2f -> %.2f", u.Area, *req.Area))
		u.Area = *req.Area
	}
	if req.Cost != nil && *req.Cost != u.Cost {
		changes = append(changes, fmt.Sprintf("cost %.2f -> %.2f", u.Cost, *req.Cost))
		u.Cost = *req.Cost
	}
	if req.EstimatedSaleValue != nil {
		changes = append(changes, fmt.Sprintf("estimated sale value %.2f", *req.EstimatedSaleValue))
		u.EstimatedSaleValue = req.EstimatedSaleValue
	}

	if len(changes) > 0 {
		if err := h.Stores.Units.UpdateUnit(r.Context(), u); err != nil {
			response.HandleAppError(w, err)
			return
		}
		h.audit(r.Context(), p.ID, userID, models.AuditUnitUpdated,
			fmt.Sprintf("Unit %s updated: %s", u.Identifier, strings.Join(changes, "; ")))
	}
	response.RespondWithJSON(w, http.StatusOK, u)
}

func (h *Handler) HandleSellUnit(w http.ResponseWriter, r *http.Request) {
	p, userID, ok := h.project(w, r)
	if !ok {
		return
	}
	u, ok := unit(w, r, p)
	if !ok {
		return
	}
	var req SellUnitRequest
	if !response.DecodeAndValidate(w, r, &req) {
		return
	}
	if u.IsSold() {
		response.HandleAppError(w, fmt.Errorf("unit %s: %w", u.Identifier, utils.ErrUnitAlreadySold))
		return
	}

	saleDate := h.today()
	if req.SaleDate != nil && !req.SaleDate.IsZero() {
		saleDate = *req.SaleDate
	}
	value := req.SaleValue
	u.Status = finance.StatusSold
	u.SaleValue = &value
	u.SaleDate = &saleDate
	if err := h.Stores.Units.UpdateUnit(r.Context(), u); err != nil {
		response.HandleAppError(w, err)
		return
	}
	h.audit(r.Context(), p.ID, userID, models.AuditUnitSold,
		fmt.Sprintf("Unit %s sold for %.2f on %s", u.Identifier, value, saleDate))

	// The sale changes the project's metrics; return the unit row with them.
	for _, row := range finance.UnitBreakdown(*p, h.inflationRate(r.Context()), h.DaysPerMonth) {
		if row.Unit.ID == u.ID {
			response.RespondWithJSON(w, http.StatusOK, row)
			return
		}
	}
	response.RespondWithJSON(w, http.StatusOK, u)
}

func (h *Handler) HandleDeleteUnit(w http.ResponseWriter, r *http.Request) {
	p, userID, ok := h.project(w, r)
	if !ok {
		return
	}
	u, ok := unit(w, r, p)
	if !ok {
		return
	}
	if err := h.Stores.Units.DeleteUnit(r.Context(), p.ID, u.ID); err != nil {
		response.HandleAppError(w, err)
		return
	}
	h.audit(r.Context(), p.ID, userID, models.AuditUnitDeleted,
		fmt.Sprintf("Unit %s deleted (%s)", u.Identifier, u.Status))
	w.WriteHeader(http.StatusNoContent)
}
