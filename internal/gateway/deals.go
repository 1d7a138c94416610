package gateway

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v3"
)

// DealsHandler proxies marketplace price searches to the deals API.
// The upstream only speaks XML by default, so the response=json parameter
// is always forced on.
type DealsHandler struct {
	baseURL string
	client  *http.Client
}

// NewDealsHandler creates a deals proxy against the given upstream URL.
func NewDealsHandler(baseURL string) *DealsHandler {
	return &DealsHandler{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Search looks up marketplace offers for a game title.
// GET /api/deals?query=<title>
func (h *DealsHandler) Search(c fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query parameter is required",
		})
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("response", "json")
	if pageSize := c.Query("pagesize"); pageSize != "" {
		params.Set("pagesize", pageSize)
	}

	reqURL := h.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(c.Context(), http.MethodGet, reqURL, nil)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "failed to create deals request",
		})
	}

	resp, err := h.client.Do(req)
	if err != nil {
		slog.Error("deals request failed", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "deals service unavailable",
		})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "failed to read deals response",
		})
	}

	c.Set("Content-Type", "application/json")
	return c.Status(resp.StatusCode).Send(body)
}
