package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fertilizer-guide/internal/advisory"
	"fertilizer-guide/internal/chart"
	"fertilizer-guide/internal/config"
	"fertilizer-guide/internal/nutrient"
	"fertilizer-guide/internal/reference"
)

// ──────────────────────────────────────────────
// main – hand off to the CLI
// ──────────────────────────────────────────────

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the read-only state shared by every request.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	table   *reference.Table
	catalog *advisory.Catalog
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	tbl, err := loadReferenceTable(cfg, logger)
	if err != nil {
		return nil, err
	}
	cat, err := advisory.Load(cfg.Advisory.CatalogPath)
	if err != nil {
		return nil, err
	}
	logger.Info("Reference table loaded",
		zap.String("source", cfg.Reference.Source),
		zap.Int("crops", tbl.Len()))
	return &app{cfg: cfg, log: logger, table: tbl, catalog: cat}, nil
}

// loadReferenceTable reads the configured source. A database that cannot be
// reached or holds no rows falls back to the bundled dataset.
func loadReferenceTable(cfg *config.Config, logger *zap.Logger) (*reference.Table, error) {
	if !cfg.Reference.IsSQL() {
		return reference.Load(cfg.Reference.Source, cfg.Reference.Path)
	}

	driver, dsn, err := sqlTarget(cfg)
	if err != nil {
		return nil, err
	}
	db, err := InitDB(driver, dsn)
	if err != nil {
		logger.Warn("Could not connect to reference database, running with bundled data", zap.Error(err))
		return reference.Embedded()
	}
	defer db.Close()

	rows, err := fetchRequirements(db)
	if err != nil || len(rows) == 0 {
		logger.Warn("Reference database unusable, running with bundled data",
			zap.Error(err), zap.Int("rows", len(rows)))
		return reference.Embedded()
	}
	return reference.New(rows)
}

// ══════════════════════════════════════════════
//  EVALUATION
// ══════════════════════════════════════════════

// evaluate looks up crop, classifies the reading and resolves advisories and
// chart. The lookup error is returned untouched so callers can match
// reference.ErrCropNotFound.
func (a *app) evaluate(crop string, reading nutrient.Reading) (*Evaluation, error) {
	req, err := a.table.Lookup(crop)
	if err != nil {
		return nil, err
	}

	res := nutrient.Evaluate(req, reading)
	recs, err := a.catalog.Resolve(res.Advisories)
	if err != nil {
		return nil, fmt.Errorf("resolve advisories: %w", err)
	}
	graph, err := chart.RenderBase64(crop, req, reading)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}

	return &Evaluation{
		Result:          res,
		Requirement:     req,
		Reading:         reading,
		Recommendations: recs,
		Messages:        a.catalog.StatusMessages(res),
		Graph:           graph,
	}, nil
}

// ══════════════════════════════════════════════
//  ROUTER
// ══════════════════════════════════════════════

func newRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(requestID(), requestLogger(a.log), gin.Recovery())
	r.SetHTMLTemplate(pageTemplate)

	r.GET("/api/v1/health", a.handleHealth)
	r.GET("/api/v1/crops", a.handleCrops)
	r.POST("/fertilizer-recommendation/", a.handleRecommendation)

	r.GET("/", a.handleForm)
	r.POST("/", a.handleFormSubmit)
	return r
}

const requestIDHeader = "X-Request-ID"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// ══════════════════════════════════════════════
//  API HANDLERS
// ══════════════════════════════════════════════

func (a *app) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Crops: a.table.Len(), Time: time.Now()})
}

func (a *app) handleCrops(c *gin.Context) {
	c.JSON(http.StatusOK, CropsResponse{Crops: a.table.Crops()})
}

func (a *app) handleRecommendation(c *gin.Context) {
	var in RecommendationRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "crop_name, N, P and K are required; N, P and K must be between 0 and 100"})
		return
	}
	reading := in.reading()
	if err := reading.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, err := a.evaluate(in.CropName, reading)
	switch {
	case errors.Is(err, reference.ErrCropNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Crop not found in the dataset"})
		return
	case err != nil:
		a.log.Error("Evaluation failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("crop", in.CropName),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "evaluation failed"})
		return
	}

	resp := RecommendationResponse{
		Crop:       in.CropName,
		Graph:      ev.Graph,
		Nutrients:  ev.Result.Nutrients[:],
		Advisories: ev.Result.Advisories,
		Status:     ev.Messages,
	}
	if ev.Result.Optimal() {
		resp.Message = a.catalog.OptimalOverall
	} else {
		resp.Recommendations = ev.Recommendations
	}
	c.JSON(http.StatusOK, resp)
}
