package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"time"
	"unicode"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/data/aggregates"
	"github.com/trainforge/trainforge-backend/internal/data/repos"
	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/domain/faults"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/gcs"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

// PreviewService renders and stores the tile images shown for materials:
// either a generated initial-glyph tile on the type's color, or an uploaded
// image cropped to the tile shape.
type PreviewService interface {
	GeneratePreview(ctx context.Context, materialID uint) (string, error)
	SetPreviewFromImage(ctx context.Context, materialID uint, raw []byte) (string, error)
	RemovePreview(ctx context.Context, materialID uint) error
}

type previewService struct {
	db  *gorm.DB
	log *logger.Logger

	materialRepo repos.MaterialRepo
	bucket       gcs.BucketService

	fontFace font.Face
}

// NewPreviewService loads the optional PREVIEW_FONT face; without it the
// glyph falls back to gg's built-in bitmap font.
func NewPreviewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	materialRepo repos.MaterialRepo,
	bucket gcs.BucketService,
) (PreviewService, error) {
	serviceLog := baseLog.With("service", "PreviewService")

	var face font.Face
	if fontPath := strings.TrimSpace(os.Getenv("PREVIEW_FONT")); fontPath != "" {
		serviceLog.Info("Loading preview font", "font", fontPath)
		loaded, err := loadPreviewFontFace(fontPath, 206)
		if err != nil {
			return nil, fmt.Errorf("could not load preview font: %w", err)
		}
		face = loaded
	}

	return &previewService{
		db:           db,
		log:          serviceLog,
		materialRepo: materialRepo,
		bucket:       bucket,
		fontFace:     face,
	}, nil
}

const previewTileSize = 512

// Tile background per material type. Unknown types share the Default gray.
var previewPalette = map[types.MaterialType]color.NRGBA{
	types.MaterialTypeVideo:         {R: 2, G: 132, B: 199, A: 255},
	types.MaterialTypeImage:         {R: 16, G: 185, B: 129, A: 255},
	types.MaterialTypePDF:           {R: 220, G: 38, B: 38, A: 255},
	types.MaterialTypeChecklist:     {R: 37, G: 99, B: 235, A: 255},
	types.MaterialTypeWorkflow:      {R: 13, G: 148, B: 136, A: 255},
	types.MaterialTypeQuestionnaire: {R: 217, G: 119, B: 6, A: 255},
	types.MaterialTypeQuiz:          {R: 219, G: 39, B: 119, A: 255},
	types.MaterialTypeChatbot:       {R: 79, G: 70, B: 229, A: 255},
	types.MaterialTypeMQTTTemplate:  {R: 100, G: 116, B: 139, A: 255},
	types.MaterialTypeUnity:         {R: 51, G: 65, B: 85, A: 255},
	types.MaterialTypeAIAssistant:   {R: 147, G: 51, B: 234, A: 255},
	types.MaterialTypeDefault:       {R: 107, G: 114, B: 128, A: 255},
}

func previewColorFor(t types.MaterialType) color.NRGBA {
	if c, ok := previewPalette[t]; ok {
		return c
	}
	return previewPalette[types.MaterialTypeDefault]
}

// =====================================
// Public operations
// =====================================

func (s *previewService) GeneratePreview(ctx context.Context, materialID uint) (string, error) {
	const op = "previews.generate"
	m, err := s.materialRepo.GetByID(dbctx.New(ctx), materialID)
	if err != nil {
		return "", aggregates.MapError(op, err)
	}
	if m == nil {
		return "", faults.Newf(faults.CodeNotFound, op, "material %d not found", materialID)
	}

	buf, err := s.renderTile(m)
	if err != nil {
		s.log.Error("Render preview failed", "material_id", materialID, "error", err)
		return "", faults.Wrap(faults.CodeInternal, op, err)
	}

	return s.storePreview(ctx, op, materialID, buf)
}

func (s *previewService) SetPreviewFromImage(ctx context.Context, materialID uint, raw []byte) (string, error) {
	const op = "previews.set_from_image"
	if len(raw) == 0 {
		return "", faults.New(faults.CodeValidation, op, "image content is required", nil)
	}
	m, err := s.materialRepo.GetByID(dbctx.New(ctx), materialID)
	if err != nil {
		return "", aggregates.MapError(op, err)
	}
	if m == nil {
		return "", faults.Newf(faults.CodeNotFound, op, "material %d not found", materialID)
	}

	buf, err := processUploadedPreview(raw, previewTileSize)
	if err != nil {
		return "", faults.Wrap(faults.CodeValidation, op, err)
	}

	return s.storePreview(ctx, op, materialID, buf)
}

func (s *previewService) RemovePreview(ctx context.Context, materialID uint) error {
	const op = "previews.remove"
	m, err := s.materialRepo.GetByID(dbctx.New(ctx), materialID)
	if err != nil {
		return aggregates.MapError(op, err)
	}
	if m == nil {
		return faults.Newf(faults.CodeNotFound, op, "material %d not found", materialID)
	}

	if err := s.materialRepo.UpdateFields(dbctx.New(ctx), materialID, map[string]interface{}{"preview_url": ""}); err != nil {
		return aggregates.MapError(op, err)
	}
	if err := s.bucket.DeletePrefix(ctx, gcs.BucketCategoryPreview, previewPrefix(materialID)); err != nil {
		s.log.Warn("Delete preview objects failed (ignored)", "material_id", materialID, "error", err)
	}
	return nil
}

// =====================================
// Storage
// =====================================

func previewPrefix(materialID uint) string {
	return fmt.Sprintf("material_preview/%d/", materialID)
}

func (s *previewService) storePreview(ctx context.Context, op string, materialID uint, buf bytes.Buffer) (string, error) {
	// Save old keys so we can delete them after the new object is up.
	oldKeys, listErr := s.bucket.ListKeys(ctx, gcs.BucketCategoryPreview, previewPrefix(materialID))
	if listErr != nil {
		s.log.Warn("List old preview objects failed (ignored)", "material_id", materialID, "error", listErr)
	}

	// Versioned key so CDN/browser can't serve stale cached content.
	newKey := fmt.Sprintf("material_preview/%d/%d.png", materialID, time.Now().UnixNano())

	if err := s.bucket.Upload(ctx, gcs.BucketCategoryPreview, newKey, bytes.NewReader(buf.Bytes())); err != nil {
		s.log.Error("Upload preview failed", "material_id", materialID, "key", newKey, "error", err)
		return "", faults.Wrap(faults.CodeInternal, op, err)
	}

	url := s.bucket.PublicURL(gcs.BucketCategoryPreview, newKey)
	if err := s.materialRepo.UpdateFields(dbctx.New(ctx), materialID, map[string]interface{}{"preview_url": url}); err != nil {
		return "", aggregates.MapError(op, err)
	}

	for _, k := range oldKeys {
		if k == newKey {
			continue
		}
		if err := s.bucket.Delete(ctx, gcs.BucketCategoryPreview, k); err != nil {
			s.log.Warn("Delete old preview failed (ignored)", "key", k, "error", err)
		}
	}

	s.log.Info("Preview stored", "material_id", materialID, "key", newKey)
	return url, nil
}

// =====================================
// Rendering
// =====================================

func (s *previewService) renderTile(m *types.Material) (bytes.Buffer, error) {
	var buf bytes.Buffer

	dc := gg.NewContext(previewTileSize, previewTileSize)

	// Rounded tile
	dc.DrawRoundedRectangle(0, 0, previewTileSize, previewTileSize, 48)
	dc.Clip()

	dc.SetColor(previewColorFor(m.Type))
	dc.DrawRectangle(0, 0, previewTileSize, previewTileSize)
	dc.Fill()

	glyph := initialGlyph(m.Name)
	if s.fontFace != nil {
		dc.SetFontFace(s.fontFace)
	}
	tw, th := dc.MeasureString(glyph)
	cx, cy := float64(previewTileSize)/2, float64(previewTileSize)/2

	dc.SetColor(color.White)
	dc.DrawString(glyph, cx-(tw/2), cy+(th/2))

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

func initialGlyph(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return string(unicode.ToUpper(r))
	}
	return "?"
}

func processUploadedPreview(raw []byte, size int) (bytes.Buffer, error) {
	var out bytes.Buffer

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("decode image: %w", err)
	}

	// Center-crop to square
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()
	side := w
	if h < w {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Src)

	// Resize to NxN
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	// Rounded-corner clip with gg
	dc := gg.NewContext(size, size)
	dc.DrawRoundedRectangle(0, 0, float64(size), float64(size), 48)
	dc.Clip()
	dc.DrawImage(dst, 0, 0)

	if err := dc.EncodePNG(&out); err != nil {
		return out, fmt.Errorf("encode png: %w", err)
	}

	return out, nil
}

func loadPreviewFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return face, nil
}
