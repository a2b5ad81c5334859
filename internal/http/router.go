package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/trainforge/trainforge-backend/internal/http/handlers"
	httpMW "github.com/trainforge/trainforge-backend/internal/http/middleware"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string

	TenantMiddleware *httpMW.TenantMiddleware

	MaterialHandler        *httpH.MaterialHandler
	RelationshipHandler    *httpH.RelationshipHandler
	HierarchyHandler       *httpH.HierarchyHandler
	SubcomponentHandler    *httpH.SubcomponentHandler
	LearningPathHandler    *httpH.LearningPathHandler
	TrainingProgramHandler *httpH.TrainingProgramHandler
	AssetHandler           *httpH.AssetHandler
	DocumentHandler        *httpH.DocumentHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readiness", cfg.HealthHandler.Readiness)
	}

	api := r.Group("/api")
	if cfg.TenantMiddleware != nil {
		api.Use(cfg.TenantMiddleware.Resolve())
	}

	// Materials
	if cfg.MaterialHandler != nil {
		api.POST("/materials", cfg.MaterialHandler.Create)
		api.GET("/materials", cfg.MaterialHandler.List)
		api.GET("/materials/:id", cfg.MaterialHandler.Get)
		api.GET("/materials/:id/complete", cfg.MaterialHandler.GetComplete)
		api.PUT("/materials/:id", cfg.MaterialHandler.Update)
		api.DELETE("/materials/:id", cfg.MaterialHandler.Delete)

		api.POST("/materials/:id/asset", cfg.MaterialHandler.AssignAsset)
		api.GET("/materials/:id/asset", cfg.MaterialHandler.GetAssetID)
		api.DELETE("/materials/:id/asset", cfg.MaterialHandler.RemoveAsset)
		api.GET("/assets/:id/materials", cfg.MaterialHandler.ListByAsset)

		api.POST("/materials/:id/preview", cfg.MaterialHandler.GeneratePreview)
		api.PUT("/materials/:id/preview", cfg.MaterialHandler.UploadPreview)
		api.DELETE("/materials/:id/preview", cfg.MaterialHandler.RemovePreview)
	}

	// Relationship edges
	if cfg.RelationshipHandler != nil {
		api.POST("/relationships", cfg.RelationshipHandler.Create)
		api.GET("/relationships/:id", cfg.RelationshipHandler.Get)
		api.DELETE("/relationships/:id", cfg.RelationshipHandler.Delete)

		api.GET("/materials/:id/relationships", cfg.RelationshipHandler.ListByMaterial)
		api.PUT("/materials/:id/relationships/order", cfg.RelationshipHandler.Reorder)

		api.POST("/materials/:id/prerequisites", cfg.RelationshipHandler.CreateDependency)
		api.DELETE("/materials/:id/prerequisites/:prerequisiteId", cfg.RelationshipHandler.RemoveDependency)
		api.GET("/materials/:id/prerequisites", cfg.RelationshipHandler.GetPrerequisites)
		api.GET("/materials/:id/dependents", cfg.RelationshipHandler.GetDependents)
	}

	// Hierarchy
	if cfg.HierarchyHandler != nil {
		api.POST("/materials/:id/children", cfg.HierarchyHandler.AssignChild)
		api.DELETE("/materials/:id/children/:childId", cfg.HierarchyHandler.RemoveChild)
		api.GET("/materials/:id/children", cfg.HierarchyHandler.ListChildren)
		api.GET("/materials/:id/parents", cfg.HierarchyHandler.ListParents)
		api.PUT("/materials/:id/children/order", cfg.HierarchyHandler.ReorderChildren)
		api.GET("/materials/:id/cycle-check", cfg.HierarchyHandler.CycleCheck)
		api.GET("/materials/:id/tree", cfg.HierarchyHandler.BuildHierarchy)
	}

	// Subcomponent links
	if cfg.SubcomponentHandler != nil {
		api.POST("/subcomponents/:kind/:id/materials", cfg.SubcomponentHandler.AssignMaterial)
		api.DELETE("/subcomponents/:kind/:id/materials/:materialId", cfg.SubcomponentHandler.RemoveMaterial)
		api.GET("/subcomponents/:kind/:id/materials", cfg.SubcomponentHandler.ListMaterials)
		api.GET("/materials/:id/subcomponent-links", cfg.SubcomponentHandler.ListLinksForMaterial)
	}

	// Learning paths
	if cfg.LearningPathHandler != nil {
		api.POST("/learning-paths", cfg.LearningPathHandler.Create)
		api.GET("/learning-paths", cfg.LearningPathHandler.List)
		api.GET("/learning-paths/:id", cfg.LearningPathHandler.Get)
		api.PUT("/learning-paths/:id", cfg.LearningPathHandler.Update)
		api.DELETE("/learning-paths/:id", cfg.LearningPathHandler.Delete)

		api.POST("/learning-paths/:id/materials", cfg.LearningPathHandler.AssignMaterial)
		api.DELETE("/learning-paths/:id/materials/:materialId", cfg.LearningPathHandler.RemoveMaterial)
		api.GET("/learning-paths/:id/materials", cfg.LearningPathHandler.ListMaterials)
		api.PUT("/learning-paths/:id/materials/order", cfg.LearningPathHandler.ReorderMaterials)
	}

	// Training programs
	if cfg.TrainingProgramHandler != nil {
		api.POST("/training-programs", cfg.TrainingProgramHandler.Create)
		api.GET("/training-programs", cfg.TrainingProgramHandler.List)
		api.GET("/training-programs/:id", cfg.TrainingProgramHandler.Get)
		api.PUT("/training-programs/:id", cfg.TrainingProgramHandler.Update)
		api.PUT("/training-programs/:id/active", cfg.TrainingProgramHandler.SetActive)
		api.DELETE("/training-programs/:id", cfg.TrainingProgramHandler.Delete)

		api.POST("/training-programs/:id/materials", cfg.TrainingProgramHandler.AssignMaterial)
		api.POST("/training-programs/:id/materials/bulk", cfg.TrainingProgramHandler.AssignMaterials)
		api.DELETE("/training-programs/:id/materials/:materialId", cfg.TrainingProgramHandler.RemoveMaterial)
		api.GET("/training-programs/:id/materials", cfg.TrainingProgramHandler.ListMaterials)
	}

	// Assets
	if cfg.AssetHandler != nil {
		api.POST("/assets", cfg.AssetHandler.Upload)
		api.GET("/assets", cfg.AssetHandler.List)
		api.GET("/assets/:id", cfg.AssetHandler.Get)
		api.GET("/assets/:id/info", cfg.AssetHandler.GetInfo)
		api.GET("/assets/:id/stat", cfg.AssetHandler.Stat)
		api.GET("/assets/:id/download", cfg.AssetHandler.Download)
		api.PUT("/assets/:id/file", cfg.AssetHandler.ReplaceFile)
		api.DELETE("/assets/:id", cfg.AssetHandler.Delete)
	}

	// Document processing
	if cfg.DocumentHandler != nil {
		api.POST("/materials/:id/document", cfg.DocumentHandler.SubmitForMaterial)
		api.POST("/assets/:id/document", cfg.DocumentHandler.SubmitAsset)
		api.GET("/assets/:id/document-jobs", cfg.DocumentHandler.ListJobsByAsset)
		api.GET("/document-jobs/:id", cfg.DocumentHandler.GetJob)
		api.POST("/document-jobs/:id/refresh", cfg.DocumentHandler.RefreshJob)
	}

	return r
}
