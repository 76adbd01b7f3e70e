package server

import (
	"fmt"

	"github.com/example/storehub/pkg/auth"
	"github.com/example/storehub/pkg/crud"
	"github.com/example/storehub/pkg/httpx"
	"github.com/example/storehub/pkg/models"
	"github.com/gin-gonic/gin"
)

// Named create/update schemas per resource. Update schemas use pointer
// fields so absent attributes are left untouched.

type namedCreate struct {
	Name string `json:"name" binding:"required,max=100"`
}

type namedUpdate struct {
	Name *string `json:"name" binding:"omitempty,max=100"`
}

type storeCreate struct {
	Name string `json:"name" binding:"required,max=100"`
	Slug string `json:"slug" binding:"required,max=100"`
}

type storeUpdate struct {
	Name *string `json:"name" binding:"omitempty,max=100"`
	Slug *string `json:"slug" binding:"omitempty,max=100"`
}

type productCreate struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
	BrandID     *uint  `json:"brand_id"`
	CategoryID  *uint  `json:"category_id"`
	StoreID     *uint  `json:"store_id"`
}

type productUpdate struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	BrandID     *uint   `json:"brand_id"`
	CategoryID  *uint   `json:"category_id"`
	StoreID     *uint   `json:"store_id"`
}

type variantCreate struct {
	ProductID uint    `json:"product_id" binding:"required"`
	SKU       string  `json:"sku" binding:"required,max=64"`
	Price     float64 `json:"price" binding:"required,gt=0"`
	Stock     int     `json:"stock" binding:"gte=0"`
}

type variantUpdate struct {
	SKU   *string  `json:"sku" binding:"omitempty,max=64"`
	Price *float64 `json:"price" binding:"omitempty,gt=0"`
	Stock *int     `json:"stock" binding:"omitempty,gte=0"`
}

type couponCreate struct {
	Code       string  `json:"code" binding:"required,max=50"`
	PercentOff float64 `json:"percent_off" binding:"required,gt=0,lte=100"`
	Active     *bool   `json:"active"`
}

type couponUpdate struct {
	PercentOff *float64 `json:"percent_off" binding:"omitempty,gt=0,lte=100"`
	Active     *bool    `json:"active"`
}

type permissionCreate struct {
	Resource string `json:"resource" binding:"required,max=50"`
	Action   string `json:"action" binding:"required,oneof=create edit delete view"`
}

type permissionUpdate struct {
	Resource *string `json:"resource" binding:"omitempty,max=50"`
	Action   *string `json:"action" binding:"omitempty,oneof=create edit delete view"`
}

type userCreate struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	RoleID   uint   `json:"role_id" binding:"required"`
}

type userUpdate struct {
	Name   *string `json:"name" binding:"omitempty,max=100"`
	Email  *string `json:"email" binding:"omitempty,email"`
	RoleID *uint   `json:"role_id"`
}

func setIf[V any](dst *V, src *V) {
	if src != nil {
		*dst = *src
	}
}

func (s *Server) registerResourceRoutes(admin *gin.RouterGroup) {
	guardFor := func(resource string) func(action string) gin.HandlerFunc {
		return func(action string) gin.HandlerFunc {
			return s.requirePermission(resource, action)
		}
	}

	crud.NewController(
		crud.NewService[models.Brand](s.db, "brand"), s.logger, "brand",
		func(req namedCreate) (models.Brand, error) { return models.Brand{Name: req.Name}, nil },
		func(m *models.Brand, req namedUpdate) { setIf(&m.Name, req.Name) },
	).RegisterGuarded(admin.Group("/brands"), guardFor("brands"))

	crud.NewController(
		crud.NewService[models.Category](s.db, "category"), s.logger, "category",
		func(req namedCreate) (models.Category, error) { return models.Category{Name: req.Name}, nil },
		func(m *models.Category, req namedUpdate) { setIf(&m.Name, req.Name) },
	).RegisterGuarded(admin.Group("/categories"), guardFor("categories"))

	crud.NewController(
		crud.NewService[models.Tag](s.db, "tag"), s.logger, "tag",
		func(req namedCreate) (models.Tag, error) { return models.Tag{Name: req.Name}, nil },
		func(m *models.Tag, req namedUpdate) { setIf(&m.Name, req.Name) },
	).RegisterGuarded(admin.Group("/tags"), guardFor("tags"))

	crud.NewController(
		crud.NewService[models.Attribute](s.db, "attribute"), s.logger, "attribute",
		func(req namedCreate) (models.Attribute, error) { return models.Attribute{Name: req.Name}, nil },
		func(m *models.Attribute, req namedUpdate) { setIf(&m.Name, req.Name) },
	).RegisterGuarded(admin.Group("/attributes"), guardFor("attributes"))

	crud.NewController(
		crud.NewService[models.Store](s.db, "store"), s.logger, "store",
		func(req storeCreate) (models.Store, error) { return models.Store{Name: req.Name, Slug: req.Slug}, nil },
		func(m *models.Store, req storeUpdate) {
			setIf(&m.Name, req.Name)
			setIf(&m.Slug, req.Slug)
		},
	).RegisterGuarded(admin.Group("/stores"), guardFor("stores"))

	crud.NewController(
		crud.NewService[models.Product](s.db, "product"), s.logger, "product",
		func(req productCreate) (models.Product, error) {
			return models.Product{
				Name:        req.Name,
				Description: req.Description,
				BrandID:     req.BrandID,
				CategoryID:  req.CategoryID,
				StoreID:     req.StoreID,
			}, nil
		},
		func(m *models.Product, req productUpdate) {
			setIf(&m.Name, req.Name)
			setIf(&m.Description, req.Description)
			if req.BrandID != nil {
				m.BrandID = req.BrandID
			}
			if req.CategoryID != nil {
				m.CategoryID = req.CategoryID
			}
			if req.StoreID != nil {
				m.StoreID = req.StoreID
			}
		},
	).RegisterGuarded(admin.Group("/products"), guardFor("products"))

	crud.NewController(
		crud.NewService[models.Variant](s.db, "variant"), s.logger, "variant",
		func(req variantCreate) (models.Variant, error) {
			return models.Variant{
				ProductID: req.ProductID,
				SKU:       req.SKU,
				Price:     req.Price,
				Stock:     req.Stock,
			}, nil
		},
		func(m *models.Variant, req variantUpdate) {
			setIf(&m.SKU, req.SKU)
			setIf(&m.Price, req.Price)
			setIf(&m.Stock, req.Stock)
		},
	).RegisterGuarded(admin.Group("/variants"), guardFor("variants"))

	crud.NewController(
		crud.NewService[models.Coupon](s.db, "coupon"), s.logger, "coupon",
		func(req couponCreate) (models.Coupon, error) {
			active := true
			if req.Active != nil {
				active = *req.Active
			}
			return models.Coupon{Code: req.Code, PercentOff: req.PercentOff, Active: active}, nil
		},
		func(m *models.Coupon, req couponUpdate) {
			setIf(&m.PercentOff, req.PercentOff)
			setIf(&m.Active, req.Active)
		},
	).RegisterGuarded(admin.Group("/coupons"), guardFor("coupons"))

	crud.NewController(
		crud.NewService[models.Role](s.db, "role"), s.logger, "role",
		func(req namedCreate) (models.Role, error) { return models.Role{Name: req.Name}, nil },
		func(m *models.Role, req namedUpdate) { setIf(&m.Name, req.Name) },
	).WithAfterWrite(s.flushRBACCache).
		RegisterGuarded(admin.Group("/roles"), guardFor("roles"))

	crud.NewController(
		crud.NewService[models.Permission](s.db, "permission"), s.logger, "permission",
		func(req permissionCreate) (models.Permission, error) {
			return models.Permission{Resource: req.Resource, Action: req.Action}, nil
		},
		func(m *models.Permission, req permissionUpdate) {
			setIf(&m.Resource, req.Resource)
			setIf(&m.Action, req.Action)
		},
	).WithAfterWrite(s.flushRBACCache).
		RegisterGuarded(admin.Group("/permissions"), guardFor("permissions"))

	crud.NewController(
		crud.NewService[models.User](s.db, "user"), s.logger, "user",
		func(req userCreate) (models.User, error) {
			hash, err := auth.HashPassword(req.Password)
			if err != nil {
				return models.User{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
			}
			return models.User{
				Name:         req.Name,
				Email:        req.Email,
				PasswordHash: hash,
				RoleID:       req.RoleID,
			}, nil
		},
		func(m *models.User, req userUpdate) {
			setIf(&m.Name, req.Name)
			setIf(&m.Email, req.Email)
			setIf(&m.RoleID, req.RoleID)
		},
	).RegisterGuarded(admin.Group("/users"), guardFor("users"))

	// Role-permission grants sit outside the generic factory: they are join
	// rows, not soft-deletable resources.
	roles := admin.Group("/roles")
	roles.POST("/:id/permissions", s.requirePermission("roles", "edit"), s.grantPermission)
	roles.DELETE("/:id/permissions/:permissionID", s.requirePermission("roles", "edit"), s.revokePermission)
}

type grantPermissionRequest struct {
	PermissionID uint `json:"permission_id" binding:"required"`
}

func (s *Server) grantPermission(c *gin.Context) {
	roleID, ok := httpx.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req grantPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	db := s.db.WithContext(c.Request.Context())
	var role models.Role
	if err := db.First(&role, roleID).Error; err != nil {
		httpx.Error(c, s.logger, err)
		return
	}
	var perm models.Permission
	if err := db.First(&perm, req.PermissionID).Error; err != nil {
		httpx.Error(c, s.logger, err)
		return
	}

	grant := models.RolePermission{RoleID: roleID, PermissionID: req.PermissionID}
	if err := db.Create(&grant).Error; err != nil {
		httpx.Error(c, s.logger, err)
		return
	}

	s.flushRBACCache(c)
	httpx.Created(c, grant)
}

func (s *Server) revokePermission(c *gin.Context) {
	roleID, ok := httpx.ParseIDParam(c, "id")
	if !ok {
		return
	}
	permissionID, ok := httpx.ParseIDParam(c, "permissionID")
	if !ok {
		return
	}

	result := s.db.WithContext(c.Request.Context()).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&models.RolePermission{})
	if result.Error != nil {
		httpx.Error(c, s.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		httpx.Error(c, s.logger, httpx.ErrNotFound)
		return
	}

	s.flushRBACCache(c)
	httpx.OKMessage(c, "permission revoked", gin.H{
		"role_id":       roleID,
		"permission_id": permissionID,
	})
}
