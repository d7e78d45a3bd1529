package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vibetracker/vibetracker/internal/progress"
	"github.com/vibetracker/vibetracker/internal/project"
	"github.com/vibetracker/vibetracker/internal/reminder"
)

// registerRoutes sets up all API routes on the gin router.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	api := router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// The step catalog is shared and public.
	api.GET("/steps", func(c *gin.Context) {
		c.JSON(http.StatusOK, opts.Catalog.Steps())
	})

	authed := api.Group("", requireAuth(opts))
	authed.GET("/projects", handleProjectList(opts))
	authed.POST("/projects", handleProjectCreate(opts))
	authed.GET("/projects/:id", handleProjectDetail(opts))
	authed.PUT("/projects/:id", handleProjectUpdate(opts))
	authed.DELETE("/projects/:id", handleProjectDelete(opts))
	authed.GET("/projects/:id/steps", handleStepList(opts))
	authed.PUT("/projects/:id/steps/:number", handleStepUpdate(opts))
	authed.GET("/reminders", handleReminderList(opts))
	authed.POST("/reminders", handleReminderCreate(opts))
}

func handleProjectList(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := project.List(opts.DB, claimsFrom(c).Subject)
		if err != nil {
			renderError(c, opts.Log, err)
			return
		}
		c.JSON(http.StatusOK, toProjectViews(projects))
	}
}

type createProjectReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func handleProjectCreate(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProjectReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		proj, err := project.Create(opts.DB, opts.Catalog, claimsFrom(c).Subject, req.Name, req.Description)
		if err != nil {
			renderError(c, opts.Log, err)
			return
		}
		c.JSON(http.StatusOK, toProjectView(*proj))
	}
}

func handleProjectDetail(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param("id")
		proj, err := project.Get(opts.DB, claimsFrom(c).Subject, projectID)
		if err != nil {
			renderError(c, opts.Log, err)
			return
		}
		rows, err := progress.ListStepProgress(opts.DB, projectID)
		if err != nil {
			renderError(c, opts.Log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"project":  toProjectView(*proj),
			"steps":    opts.Catalog.Steps(),
			"progress": toProgressViews(rows),
		})
	}
}

type updateProjectReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func handleProjectUpdate(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateProjectReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		proj, err := project.Update(opts.DB, claimsFrom(c).Subject, c.Param("id"), project.UpdateOpts{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			renderError(c, opts.Log, err)
			return
		}
		c.JSON(http.StatusOK, toProjectView(*proj))
	}
}

func handleProjectDelete(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := project.Delete(opts.DB, claimsFrom(c).Subject, c.Param("id")); err != nil {
			renderError(c, opts.Log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func handleStepList(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param("id")
		if _, err := project.Get(opts.DB, claimsFrom(c).Subject, projectID); err != nil {
			renderError(c, opts.Log, err)
			return
		}
		rows, err := progress.ListStepProgress(opts.DB, projectID)
		if err != nil {
			renderError(c, opts.Log, err)
			return
		}
		c.JSON(http.StatusOK, toProgressViews(rows))
	}
}

type stepPatchReq struct {
	Status          *string    `json:"status" binding:"omitempty,oneof=not_started in_progress completed skipped"`
	ProgressPercent *int       `json:"progress_percent"`
	Notes           *string    `json:"notes"`
	CompletedAt     *time.Time `json:"completed_at"`
}

func handleStepUpdate(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		stepNumber, err := strconv.Atoi(c.Param("number"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step number"})
			return
		}
		var req stepPatchReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		row, err := progress.UpdateStepProgress(opts.DB, claimsFrom(c).Subject, c.Param("id"), stepNumber, progress.Patch{
			Status:          req.Status,
			ProgressPercent: req.ProgressPercent,
			Notes:           req.Notes,
			CompletedAt:     req.CompletedAt,
		})
		if err != nil {
			renderError(c, opts.Log, err)
			return
		}
		c.JSON(http.StatusOK, toProgressView(*row))
	}
}

func handleReminderList(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		reminders, err := reminder.List(opts.DB, claimsFrom(c).Subject)
		if err != nil {
			renderError(c, opts.Log, err)
			return
		}
		c.JSON(http.StatusOK, toReminderViews(reminders))
	}
}

type createReminderReq struct {
	ProjectID string `json:"project_id" binding:"required"`
	// Pointer so presence is validated without rejecting step number 0.
	StepNumber *int      `json:"step_number" binding:"required"`
	RemindAt   time.Time `json:"remind_at" binding:"required"`
	Message    string    `json:"message"`
}

func handleReminderCreate(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createReminderReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project_id, step_number and remind_at are required"})
			return
		}
		rem, err := reminder.Create(opts.DB, claimsFrom(c).Subject, req.ProjectID, *req.StepNumber, req.RemindAt, req.Message)
		if err != nil {
			renderError(c, opts.Log, err)
			return
		}
		c.JSON(http.StatusOK, toReminderView(*rem))
	}
}
