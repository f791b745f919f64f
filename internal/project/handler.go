package project

import (
	"fmt"
	"strings"
	"time"

	"irrigation-backend/internal/audit"
	"irrigation-backend/internal/auth"
	"irrigation-backend/internal/database"
	"irrigation-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateProjectRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	ImagePath   string  `json:"image_path"`
}

type UpdateProjectRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Cost        *float64 `json:"cost"`
	ImagePath   *string  `json:"image_path"`
}

type ProjectResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	ImagePath   string  `json:"image_path"`
	CreatedDate string  `json:"created_date"`
}

func toProjectResponse(p *models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Cost:        p.Cost,
		ImagePath:   p.ImagePath,
		CreatedDate: p.CreatedDate.Format("2006-01-02"),
	}
}

// GET /api/projects  (عام)
func ListProjectsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var projects []models.Project
		if err := database.DB.Order("created_date desc").Find(&projects).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر عرض المشاريع")
		}

		resp := make([]ProjectResponse, 0, len(projects))
		for i := range projects {
			resp = append(resp, toProjectResponse(&projects[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/admin/projects
func CreateProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProjectRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		body.Title = strings.TrimSpace(body.Title)
		if body.Title == "" || body.Cost <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "العنوان والتكلفة مطلوبان")
		}

		project := models.Project{
			Title:       body.Title,
			Description: body.Description,
			Cost:        body.Cost,
			ImagePath:   body.ImagePath,
			CreatedDate: time.Now(),
		}
		if err := database.DB.Create(&project).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ في إضافة المشروع")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "project",
			EntityID:    project.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("تم إضافة مشروع: %s - %.2f", project.Title, project.Cost),
			After:       toProjectResponse(&project),
		})

		return c.Status(fiber.StatusCreated).JSON(toProjectResponse(&project))
	}
}

// PUT /api/admin/projects/:id
func UpdateProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var project models.Project
		if err := database.DB.First(&project, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "المشروع غير موجود")
		}
		before := toProjectResponse(&project)

		var body UpdateProjectRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		if body.Title != nil {
			title := strings.TrimSpace(*body.Title)
			if title == "" {
				return fiber.NewError(fiber.StatusBadRequest, "العنوان لا يمكن أن يكون فارغاً")
			}
			project.Title = title
		}
		if body.Description != nil {
			project.Description = *body.Description
		}
		if body.Cost != nil {
			if *body.Cost <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "التكلفة يجب أن تكون أكبر من صفر")
			}
			project.Cost = *body.Cost
		}
		if body.ImagePath != nil {
			project.ImagePath = *body.ImagePath
		}

		if err := database.DB.Save(&project).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر تحديث المشروع")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "project",
			EntityID:    project.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("تم تحديث المشروع %d", project.ID),
			Before:      before,
			After:       toProjectResponse(&project),
		})

		return c.JSON(toProjectResponse(&project))
	}
}

// DELETE /api/admin/projects/:id
func DeleteProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var project models.Project
		if err := database.DB.First(&project, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "المشروع غير موجود")
		}

		if err := database.DB.Delete(&project).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ في حذف المشروع")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "project",
			EntityID:    project.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("تم حذف المشروع: %s", project.Title),
			Before:      toProjectResponse(&project),
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
