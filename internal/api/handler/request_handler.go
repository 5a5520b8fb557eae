package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aurora-advisory/advisory-api/internal/core/ports"
)

// RequestHandler serves the consultation request endpoints.
type RequestHandler struct {
	workflow ports.WorkflowService
	query    ports.QueryService
}

func NewRequestHandler(workflow ports.WorkflowService, query ports.QueryService) *RequestHandler {
	return &RequestHandler{workflow: workflow, query: query}
}

// Create handles POST /requests.
//
// @Summary      Submit a consultation request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string             false  "Replays the first request created with this key"
// @Param        body             body      createRequestBody  true   "Request details"
// @Success      201              {object}  requestResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /requests [post]
func (h *RequestHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createRequestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.workflow.Create(c.Request().Context(), ports.CreateRequestInput{
		Principal:      p,
		Draft:          toRequestDraft(req),
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}
	if result.Replayed {
		c.Response().Header().Set("Idempotent-Replayed", "true")
	}
	return c.JSON(http.StatusCreated, toRequestResponse(*result.Request))
}

// ListMine handles GET /requests/me.
//
// @Summary      List my requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   requestResponse
// @Failure      401  {object}  errorResponse
// @Router       /requests/me [get]
func (h *RequestHandler) ListMine(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	items, err := h.query.ListMine(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResponses(items))
}

// GetMine handles GET /requests/me/:id.
//
// @Summary      Get one of my requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  requestResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /requests/me/{id} [get]
func (h *RequestHandler) GetMine(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	req, err := h.query.GetMine(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResponse(*req))
}

// Cancel handles PATCH /requests/me/:id.
//
// @Summary      Cancel one of my requests
// @Description  Allowed only while the request is pending. Cancelling twice is a no-op.
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  cancelResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /requests/me/{id} [patch]
func (h *RequestHandler) Cancel(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.workflow.Cancel(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cancelResponse{
		OK:        true,
		OldStatus: string(res.OldStatus),
		NewStatus: string(res.NewStatus),
	})
}

// Delete handles DELETE /requests/me/:id.
//
// @Summary      Delete one of my requests
// @Description  Allowed only while the request is pending or cancelled.
// @Tags         requests
// @Security     BearerAuth
// @Param        id   path  int  true  "Request ID"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /requests/me/{id} [delete]
func (h *RequestHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.workflow.Delete(c.Request().Context(), p, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAll handles GET /requests.
//
// @Summary      List all requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter"  Enums(pending, in_review, completed, cancelled)
// @Param        q       query     string  false  "Search goal, notes and owner email"
// @Param        sort    query     string  false  "Sort column"     Enums(created_at, updated_at, amount)
// @Param        order   query     string  false  "Sort direction"  Enums(asc, desc)
// @Param        skip    query     int     false  "Rows to skip"    minimum(0)
// @Param        limit   query     int     false  "Page size"       minimum(1) maximum(200) default(25)
// @Success      200     {object}  requestListResponse
// @Failure      403     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /requests [get]
func (h *RequestHandler) ListAll(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var q listRequestsQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid query parameters")
	}
	page, err := h.query.ListAll(c.Request().Context(), p, toListInput(q))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requestListResponse{
		Items: toRequestResponses(page.Items),
		Total: page.Total,
	})
}

// Stats handles GET /requests/stats.
//
// @Summary      Count requests per status
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  requestStatsResponse
// @Failure      403  {object}  errorResponse
// @Router       /requests/stats [get]
func (h *RequestHandler) Stats(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	st, err := h.query.Stats(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requestStatsResponse{
		Total:     st.Total,
		Pending:   st.Pending,
		InReview:  st.InReview,
		Completed: st.Completed,
		Cancelled: st.Cancelled,
	})
}

// SetStatus handles PATCH /requests/:id.
//
// @Summary      Change the status of a request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int            true  "Request ID"
// @Param        body  body      setStatusBody  true  "New status"
// @Success      200   {object}  requestResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /requests/{id} [patch]
func (h *RequestHandler) SetStatus(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req setStatusBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	view, err := h.workflow.SetStatus(c.Request().Context(), p, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResponse(*view))
}

// History handles GET /requests/:id/history.
//
// @Summary      Status change history of a request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Request ID"
// @Success      200  {array}   statusLogResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /requests/{id}/history [get]
func (h *RequestHandler) History(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	logs, err := h.workflow.History(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStatusLogResponses(logs))
}
