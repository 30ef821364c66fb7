package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Arooshimran/doma-backend/internal/app"
	"github.com/Arooshimran/doma-backend/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// ContactResponse is the API representation of vendor contact details.
type ContactResponse struct {
	Phone   string `json:"phone,omitempty" doc:"Contact phone number"`
	Address string `json:"address,omitempty" doc:"Street address"`
	City    string `json:"city,omitempty" doc:"City"`
	Country string `json:"country,omitempty" doc:"Country"`
}

// BusinessResponse is the API representation of business registration details.
type BusinessResponse struct {
	BusinessLicense string `json:"business_license,omitempty" doc:"Business license number"`
	TaxID           string `json:"tax_id,omitempty" doc:"Tax identifier"`
	BusinessType    string `json:"business_type,omitempty" doc:"Legal form (individual, company, partnership)"`
}

// VendorResponse is the sanitized API representation of a vendor. It
// never carries the password hash.
type VendorResponse struct {
	ID               string           `json:"id" doc:"Unique identifier"`
	Email            string           `json:"email" doc:"Account email"`
	StoreName        string           `json:"store_name" doc:"Display name of the store"`
	Slug             string           `json:"slug" doc:"URL-friendly store identifier"`
	StoreDescription string           `json:"store_description,omitempty" doc:"Store description"`
	LogoID           string           `json:"logo_id,omitempty" doc:"Reference to the store logo upload"`
	Status           string           `json:"status" doc:"Lifecycle state"`
	Contact          ContactResponse  `json:"contact" doc:"Contact details"`
	Business         BusinessResponse `json:"business" doc:"Business registration details"`
	CreatedAt        string           `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt        string           `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toVendorResponse(v domain.Vendor) VendorResponse {
	return VendorResponse{
		ID:               v.ID,
		Email:            v.Email,
		StoreName:        v.StoreName,
		Slug:             v.Slug,
		StoreDescription: v.StoreDescription,
		LogoID:           v.LogoID,
		Status:           string(v.Status),
		Contact: ContactResponse{
			Phone:   v.Contact.Phone,
			Address: v.Contact.Address,
			City:    v.Contact.City,
			Country: v.Contact.Country,
		},
		Business: BusinessResponse{
			BusinessLicense: v.Business.BusinessLicense,
			TaxID:           v.Business.TaxID,
			BusinessType:    string(v.Business.BusinessType),
		},
		CreatedAt: v.CreatedAt.Format(timeFormat),
		UpdatedAt: v.UpdatedAt.Format(timeFormat),
	}
}

// SummaryResponse is the compact vendor view returned with sessions.
type SummaryResponse struct {
	ID        string `json:"id" doc:"Unique identifier"`
	Email     string `json:"email" doc:"Account email"`
	StoreName string `json:"store_name" doc:"Display name of the store"`
	Slug      string `json:"slug" doc:"URL-friendly store identifier"`
	Status    string `json:"status" doc:"Lifecycle state"`
}

func toSummaryResponse(s domain.Summary) SummaryResponse {
	return SummaryResponse{
		ID:        s.ID,
		Email:     s.Email,
		StoreName: s.StoreName,
		Slug:      s.Slug,
		Status:    string(s.Status),
	}
}

// CategoryResponse is the API representation of a category.
type CategoryResponse struct {
	ID        string `json:"id" doc:"Unique identifier"`
	Name      string `json:"name" doc:"Category name"`
	Slug      string `json:"slug" doc:"URL-friendly identifier"`
	Active    bool   `json:"active" doc:"Whether the category is selectable"`
	SortOrder int    `json:"sort_order" doc:"Display ordering weight"`
}

func toCategoryResponse(c domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		Active:    c.Active,
		SortOrder: c.SortOrder,
	}
}

// --- Register ---

type RegisterVendorInput struct {
	Body struct {
		Email           string `json:"email" format:"email" doc:"Account email"`
		Password        string `json:"password" minLength:"8" maxLength:"128" doc:"Account password"`
		StoreName       string `json:"store_name" minLength:"1" maxLength:"255" doc:"Display name of the store"`
		Phone           string `json:"phone,omitempty" doc:"Contact phone number"`
		Address         string `json:"address,omitempty" doc:"Street address"`
		City            string `json:"city,omitempty" doc:"City"`
		Country         string `json:"country,omitempty" doc:"Country"`
		BusinessLicense string `json:"business_license,omitempty" doc:"Business license number"`
		TaxID           string `json:"tax_id,omitempty" doc:"Tax identifier"`
		BusinessType    string `json:"business_type,omitempty" doc:"Legal form (individual, company, partnership)"`
	}
}

type RegisterVendorOutput struct {
	Body VendorResponse
}

// --- Login ---

type LoginInput struct {
	Body struct {
		Email    string `json:"email" format:"email" doc:"Account email"`
		Password string `json:"password" minLength:"1" doc:"Account password"`
	}
}

type LoginOutput struct {
	Body struct {
		Token  string          `json:"token" doc:"Bearer token for the vendor session"`
		Vendor SummaryResponse `json:"vendor" doc:"Sanitized vendor summary"`
	}
}

// --- Status check ---

type VendorStatusInput struct {
	Email string `query:"email" format:"email" doc:"Registered account email"`
}

type VendorStatusOutput struct {
	Body struct {
		StoreName       string `json:"store_name" doc:"Display name of the store"`
		Status          string `json:"status" doc:"Lifecycle state"`
		RejectionReason string `json:"rejection_reason,omitempty" doc:"Reason given when the application was rejected"`
	}
}

// --- Self-service profile ---

type GetProfileInput struct {
	Authorization string `header:"Authorization" required:"false" doc:"JWT bearer token"`
}

type GetProfileOutput struct {
	Body VendorResponse
}

type UpdateProfileInput struct {
	Authorization string `header:"Authorization" required:"false" doc:"JWT bearer token"`
	Body          struct {
		StoreName        *string `json:"store_name,omitempty" doc:"Display name of the store"`
		StoreDescription *string `json:"store_description,omitempty" doc:"Store description"`
		LogoID           *string `json:"logo_id,omitempty" doc:"Reference to the store logo upload"`
		Phone            *string `json:"phone,omitempty" doc:"Contact phone number"`
		Address          *string `json:"address,omitempty" doc:"Street address"`
		City             *string `json:"city,omitempty" doc:"City"`
		Country          *string `json:"country,omitempty" doc:"Country"`
		BusinessLicense  *string `json:"business_license,omitempty" doc:"Business license number"`
		TaxID            *string `json:"tax_id,omitempty" doc:"Tax identifier"`
		BusinessType     *string `json:"business_type,omitempty" doc:"Legal form (individual, company, partnership)"`
	}
}

type UpdateProfileOutput struct {
	Body VendorResponse
}

// --- Admin decisions ---

type ApproveVendorInput struct {
	AdminKey string `header:"X-Admin-Key" required:"false" doc:"Admin API key"`
	ID       string `path:"id" doc:"Vendor ID"`
	Body     struct {
		Note string `json:"note,omitempty" maxLength:"1000" doc:"Optional approval note"`
	}
}

type ApproveVendorOutput struct {
	Body VendorResponse
}

type RejectVendorInput struct {
	AdminKey string `header:"X-Admin-Key" required:"false" doc:"Admin API key"`
	ID       string `path:"id" doc:"Vendor ID"`
	Body     struct {
		Reason string `json:"reason" minLength:"1" maxLength:"1000" doc:"Reason for rejection"`
	}
}

type RejectVendorOutput struct {
	Body VendorResponse
}

// --- Listing ---

type ListVendorsInput struct {
	Status string `query:"status" required:"false" doc:"Filter by lifecycle state (pending, approved, rejected)"`
	Limit  int    `query:"limit" required:"false" default:"50" minimum:"1" maximum:"200" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" minimum:"0" doc:"Pagination offset"`
}

type ListVendorsOutput struct {
	Body []VendorResponse
}

// --- Categories ---

type ListCategoriesOutput struct {
	Body []CategoryResponse
}

type EnsureCategoryInput struct {
	AdminKey string `header:"X-Admin-Key" required:"false" doc:"Admin API key"`
	Body     struct {
		Name string `json:"name" minLength:"1" maxLength:"255" doc:"Category name"`
	}
}

type EnsureCategoryOutput struct {
	Body CategoryResponse
}

// Handler holds the services behind the vendor API.
type Handler struct {
	vendors    *app.VendorService
	auth       *app.AuthService
	categories *app.CategoryService
	adminKey   string
}

// NewHandler creates a handler. adminKey guards the review and category
// management endpoints.
func NewHandler(vendors *app.VendorService, auth *app.AuthService, categories *app.CategoryService, adminKey string) *Handler {
	return &Handler{
		vendors:    vendors,
		auth:       auth,
		categories: categories,
		adminKey:   adminKey,
	}
}

// adminActor resolves the actor behind an admin key header. A missing
// or wrong key yields an anonymous actor; an unset server key disables
// admin access entirely.
func (h *Handler) adminActor(key string) domain.Actor {
	if h.adminKey == "" || key == "" {
		return domain.Actor{}
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(h.adminKey)) != 1 {
		return domain.Actor{}
	}
	return domain.Actor{ID: "admin", Kind: domain.ActorAdmin}
}

// Register adds all vendor API routes to the Huma API.
func Register(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID:   "register-vendor",
		Method:        http.MethodPost,
		Path:          "/api/v1/vendors/register",
		Summary:       "Register a new vendor",
		Tags:          []string{"Vendors"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RegisterVendorInput) (*RegisterVendorOutput, error) {
		vendor, err := h.vendors.Register(ctx, app.RegisterInput{
			Email:     input.Body.Email,
			Password:  input.Body.Password,
			StoreName: input.Body.StoreName,
			Contact: domain.ContactInfo{
				Phone:   input.Body.Phone,
				Address: input.Body.Address,
				City:    input.Body.City,
				Country: input.Body.Country,
			},
			Business: domain.BusinessInfo{
				BusinessLicense: input.Body.BusinessLicense,
				TaxID:           input.Body.TaxID,
				BusinessType:    domain.BusinessType(input.Body.BusinessType),
			},
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RegisterVendorOutput{Body: toVendorResponse(vendor)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login-vendor",
		Method:      http.MethodPost,
		Path:        "/api/v1/vendors/login",
		Summary:     "Authenticate a vendor",
		Tags:        []string{"Vendors"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		session, err := h.auth.Authenticate(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &LoginOutput{}
		out.Body.Token = session.Token
		out.Body.Vendor = toSummaryResponse(session.Vendor)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "vendor-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/vendors/status",
		Summary:     "Check a vendor application status by email",
		Tags:        []string{"Vendors"},
	}, func(ctx context.Context, input *VendorStatusInput) (*VendorStatusOutput, error) {
		vendor, err := h.vendors.GetByEmail(ctx, input.Email)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &VendorStatusOutput{}
		out.Body.StoreName = vendor.StoreName
		out.Body.Status = string(vendor.Status)
		if vendor.Status == domain.StatusRejected {
			out.Body.RejectionReason = vendor.Decision.RejectionReason
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-vendor-profile",
		Method:      http.MethodGet,
		Path:        "/api/v1/vendors/me",
		Summary:     "Get the authenticated vendor's profile",
		Tags:        []string{"Vendors"},
	}, func(ctx context.Context, input *GetProfileInput) (*GetProfileOutput, error) {
		actor := h.auth.ExtractActor(input.Authorization)
		if actor.Kind == domain.ActorAnonymous {
			return nil, huma.Error401Unauthorized("authentication required")
		}
		if !domain.Decide(actor, domain.ActionReadVendor, actor.ID) {
			return nil, huma.Error403Forbidden("not allowed")
		}

		vendor, err := h.vendors.GetByID(ctx, actor.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetProfileOutput{Body: toVendorResponse(vendor)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-vendor-profile",
		Method:      http.MethodPut,
		Path:        "/api/v1/vendors/me",
		Summary:     "Update the authenticated vendor's profile",
		Tags:        []string{"Vendors"},
	}, func(ctx context.Context, input *UpdateProfileInput) (*UpdateProfileOutput, error) {
		actor := h.auth.ExtractActor(input.Authorization)
		if actor.Kind == domain.ActorAnonymous {
			return nil, huma.Error401Unauthorized("authentication required")
		}
		if !domain.Decide(actor, domain.ActionUpdateVendor, actor.ID) {
			return nil, huma.Error403Forbidden("not allowed")
		}

		profile := app.ProfileInput{
			StoreName:        input.Body.StoreName,
			StoreDescription: input.Body.StoreDescription,
			LogoID:           input.Body.LogoID,
		}
		touchesContact := input.Body.Phone != nil || input.Body.Address != nil ||
			input.Body.City != nil || input.Body.Country != nil
		touchesBusiness := input.Body.BusinessLicense != nil || input.Body.TaxID != nil ||
			input.Body.BusinessType != nil

		// Contact and business groups are stored whole, so partial edits
		// merge into the current values before the update.
		if touchesContact || touchesBusiness {
			current, err := h.vendors.GetByID(ctx, actor.ID)
			if err != nil {
				return nil, toHumaError(err)
			}
			if touchesContact {
				contact := current.Contact
				applyString(&contact.Phone, input.Body.Phone)
				applyString(&contact.Address, input.Body.Address)
				applyString(&contact.City, input.Body.City)
				applyString(&contact.Country, input.Body.Country)
				profile.Contact = &contact
			}
			if touchesBusiness {
				business := current.Business
				applyString(&business.BusinessLicense, input.Body.BusinessLicense)
				applyString(&business.TaxID, input.Body.TaxID)
				if input.Body.BusinessType != nil {
					business.BusinessType = domain.BusinessType(*input.Body.BusinessType)
				}
				profile.Business = &business
			}
		}

		vendor, err := h.vendors.UpdateProfile(ctx, actor.ID, profile)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &UpdateProfileOutput{Body: toVendorResponse(vendor)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "approve-vendor",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/vendors/{id}/approve",
		Summary:     "Approve a pending vendor",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *ApproveVendorInput) (*ApproveVendorOutput, error) {
		actor := h.adminActor(input.AdminKey)
		if !domain.Decide(actor, domain.ActionReviewVendor, input.ID) {
			return nil, huma.Error401Unauthorized("admin authentication required")
		}

		vendor, err := h.vendors.Approve(ctx, input.ID, actor.ID, input.Body.Note)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ApproveVendorOutput{Body: toVendorResponse(vendor)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reject-vendor",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/vendors/{id}/reject",
		Summary:     "Reject a pending vendor",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *RejectVendorInput) (*RejectVendorOutput, error) {
		actor := h.adminActor(input.AdminKey)
		if !domain.Decide(actor, domain.ActionReviewVendor, input.ID) {
			return nil, huma.Error401Unauthorized("admin authentication required")
		}

		vendor, err := h.vendors.Reject(ctx, input.ID, actor.ID, input.Body.Reason)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RejectVendorOutput{Body: toVendorResponse(vendor)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-vendors",
		Method:      http.MethodGet,
		Path:        "/api/v1/vendors",
		Summary:     "List vendors",
		Tags:        []string{"Vendors"},
	}, func(ctx context.Context, input *ListVendorsInput) (*ListVendorsOutput, error) {
		filter := domain.ListFilter{
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Status != "" {
			s := domain.Status(input.Status)
			filter.Status = &s
		}

		vendors, err := h.vendors.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]VendorResponse, len(vendors))
		for i, v := range vendors {
			resp[i] = toVendorResponse(v)
		}
		return &ListVendorsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Tags:        []string{"Categories"},
	}, func(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
		categories, err := h.categories.List(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]CategoryResponse, len(categories))
		for i, c := range categories {
			resp[i] = toCategoryResponse(c)
		}
		return &ListCategoriesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "ensure-category",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories",
		Summary:     "Find or create a category by name",
		Tags:        []string{"Categories"},
	}, func(ctx context.Context, input *EnsureCategoryInput) (*EnsureCategoryOutput, error) {
		actor := h.adminActor(input.AdminKey)
		if !domain.Decide(actor, domain.ActionManageCategories, "") {
			return nil, huma.Error401Unauthorized("admin authentication required")
		}

		category, err := h.categories.Ensure(ctx, input.Body.Name)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &EnsureCategoryOutput{Body: toCategoryResponse(category)}, nil
	})
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	if errors.Is(err, domain.ErrVendorNotFound) {
		return huma.Error404NotFound("vendor not found")
	}
	if errors.Is(err, domain.ErrCategoryNotFound) {
		return huma.Error404NotFound("category not found")
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return huma.Error401Unauthorized(domain.ErrInvalidCredentials.Error())
	}

	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return huma.Error422UnprocessableEntity(valErr.Error())
	}

	var emailErr *domain.EmailConflictError
	if errors.As(err, &emailErr) {
		return huma.Error409Conflict(emailErr.Error())
	}

	var slugErr *domain.SlugConflictError
	if errors.As(err, &slugErr) {
		return huma.Error409Conflict(slugErr.Error())
	}

	var stateErr *domain.AccountStateError
	if errors.As(err, &stateErr) {
		return huma.Error403Forbidden(stateErr.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
