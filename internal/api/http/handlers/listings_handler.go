package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/localhands/marketplace-api/internal/api/dto"
	"github.com/localhands/marketplace-api/internal/auth"
	"github.com/localhands/marketplace-api/internal/search"
	"github.com/localhands/marketplace-api/internal/service"
	apperrors "github.com/localhands/marketplace-api/pkg/util"
)

// ListingsHandler manages listing endpoints.
type ListingsHandler struct {
	listings *service.ListingService
	search   *search.Engine
}

// NewListingsHandler constructs handler.
func NewListingsHandler(listings *service.ListingService, engine *search.Engine) *ListingsHandler {
	return &ListingsHandler{listings: listings, search: engine}
}

// Create POST /api/listings.
func (h *ListingsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	input, err := parseListingInput(c)
	if err != nil {
		return err
	}

	listing, err := h.listings.Create(c.UserContext(), input, principal.ID())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.CreateListingResponse{ListingID: listing.ID},
	})
}

// Seed POST /api/seed-services adds demo listings owned by the caller.
func (h *ListingsHandler) Seed(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	created, err := h.listings.Seed(c.UserContext(), principal.ID())
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(created))
	for _, listing := range created {
		ids = append(ids, listing.ID)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"listing_ids": ids, "count": len(ids)},
	})
}

// Search GET /api/listings/search.
func (h *ListingsHandler) Search(c *fiber.Ctx) error {
	result, err := h.search.Search(c.UserContext(), search.Params{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		City:     c.Query("city"),
		Zip:      c.Query("zip"),
		MinPrice: c.Query("min_price"),
		MaxPrice: c.Query("max_price"),
		Page:     c.Query("page"),
		Limit:    c.Query("limit"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.SearchResponse{
			Listings:   dto.NewListingResponses(result.Listings),
			Pagination: result.Pagination,
			Filters:    result.Filters,
		},
	})
}

// ListByProvider GET /api/listings/provider/:providerId.
func (h *ListingsHandler) ListByProvider(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	views, err := h.listings.ListByProvider(c.UserContext(), c.Params("providerId"), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.ProviderListingsResponse{
			Listings: dto.NewListingResponses(views),
			Count:    len(views),
		},
	})
}

// Get GET /api/listings/:id.
func (h *ListingsHandler) Get(c *fiber.Ctx) error {
	view, err := h.listings.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingResponse(*view)})
}

// Update PUT /api/listings/:id.
func (h *ListingsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	input, err := parseListingInput(c)
	if err != nil {
		return err
	}

	view, err := h.listings.Update(c.UserContext(), c.Params("id"), input, principal.ID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingResponse(*view)})
}

// Delete DELETE /api/listings/:id.
func (h *ListingsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	id := c.Params("id")
	if err := h.listings.Delete(c.UserContext(), id, principal.ID()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"listing_id": id, "deleted": true}})
}

func parseListingInput(c *fiber.Ctx) (service.ListingInput, error) {
	var req dto.ListingRequest
	if err := c.BodyParser(&req); err != nil {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) {
			return service.ListingInput{}, domainErr
		}
		return service.ListingInput{}, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	return service.ListingInput{
		ServiceName:  req.ServiceName,
		Description:  req.Description,
		Category:     req.Category,
		Price:        req.Price.Value,
		Availability: req.Availability,
		LocationCity: req.LocationCity,
		LocationZip:  req.LocationZip,
		ImageURL:     req.ImageURL,
	}, nil
}
