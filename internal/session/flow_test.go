package session

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/muurk/prep/internal/capture"
	"github.com/muurk/prep/internal/recipeapi"
)

type fakeService struct {
	detected []string
	recipe   *recipeapi.Recipe
	scan     *recipeapi.ScanResult
	err      error

	generateCalls [][]string
}

func (f *fakeService) Detect(ctx context.Context, img recipeapi.Image) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.detected, nil
}

func (f *fakeService) Generate(ctx context.Context, ingredients []string) (*recipeapi.Recipe, error) {
	f.generateCalls = append(f.generateCalls, ingredients)
	if f.err != nil {
		return nil, f.err
	}
	return f.recipe, nil
}

func (f *fakeService) Scan(ctx context.Context, img recipeapi.Image) (*recipeapi.ScanResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.scan, nil
}

type fakeGallery struct{}

func (fakeGallery) Pick(ctx context.Context, path string) (*capture.Photo, error) {
	if path == "" {
		return nil, capture.ErrPickerCancelled
	}
	return &capture.Photo{Path: path, Source: capture.SourceGallery, ContentType: "image/jpeg"}, nil
}

func (fakeGallery) Dir() string { return "/photos" }

type fakeCamera struct {
	err error
}

func (f fakeCamera) Capture(ctx context.Context) (*capture.Photo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &capture.Photo{Path: "/tmp/capture-1.jpg", Source: capture.SourceCamera}, nil
}

func (fakeCamera) Device() string { return "/dev/video0" }

type fakePermissions struct {
	camera, media error
}

func (f fakePermissions) RequestCamera(ctx context.Context) error       { return f.camera }
func (f fakePermissions) RequestMediaLibrary(ctx context.Context) error { return f.media }

func TestFlow_EndToEnd(t *testing.T) {
	svc := &fakeService{
		detected: []string{"egg", "flour"},
		recipe: &recipeapi.Recipe{
			Title:       "Pancakes",
			Ingredients: []string{"2 eggs", "1 cup flour", "1 cup milk"},
			Steps:       []string{"Whisk everything", "Rest 10 minutes", "Fry in butter"},
		},
	}
	flow := &Flow{
		Controller:  New(ContractSplit),
		Service:     svc,
		Gallery:     fakeGallery{},
		Permissions: fakePermissions{},
	}
	ctx := context.Background()
	c := flow.Controller

	if err := flow.PickPhoto(ctx, "/photos/fridge.jpg"); err != nil {
		t.Fatalf("PickPhoto() error = %v", err)
	}
	if c.State() != StatePhotoPreview {
		t.Fatalf("State() = %v, want PhotoPreview", c.State())
	}

	if err := flow.Analyze(ctx); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if c.State() != StateIngredientEditing {
		t.Fatalf("State() = %v, want IngredientEditing", c.State())
	}
	if got := c.Ingredients(); !reflect.DeepEqual(got, []string{"egg", "flour"}) {
		t.Fatalf("Ingredients() = %v, want [egg flour]", got)
	}

	if err := c.AddIngredient("milk"); err != nil {
		t.Fatalf("AddIngredient() error = %v", err)
	}
	if got := c.Ingredients(); !reflect.DeepEqual(got, []string{"egg", "flour", "milk"}) {
		t.Fatalf("Ingredients() = %v, want [egg flour milk]", got)
	}

	if err := flow.Generate(ctx); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if c.State() != StateRecipeResult {
		t.Fatalf("State() = %v, want RecipeResult", c.State())
	}

	recipe := c.Recipe()
	if recipe.Title != "Pancakes" {
		t.Errorf("Recipe().Title = %q, want Pancakes", recipe.Title)
	}
	if len(recipe.Steps) != 3 {
		t.Errorf("len(Recipe().Steps) = %d, want 3", len(recipe.Steps))
	}
	if got := svc.generateCalls[0]; !reflect.DeepEqual(got, []string{"egg", "flour", "milk"}) {
		t.Errorf("Generate() sent %v, want [egg flour milk]", got)
	}
}

func TestFlow_Submit_Combined(t *testing.T) {
	svc := &fakeService{
		scan: &recipeapi.ScanResult{
			DetectedIngredients: []string{"Tomato", "Egg", "Onion"},
			Recipe:              &recipeapi.Recipe{Title: "Simple Scrambled Eggs with Tomato", Steps: []string{"Serve hot."}},
		},
	}
	flow := &Flow{Controller: New(ContractCombined), Service: svc, Gallery: fakeGallery{}}
	ctx := context.Background()

	if err := flow.PickPhoto(ctx, "eggs.jpg"); err != nil {
		t.Fatalf("PickPhoto() error = %v", err)
	}
	if err := flow.Submit(ctx); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if flow.Controller.State() != StateRecipeResult {
		t.Errorf("State() = %v, want RecipeResult", flow.Controller.State())
	}
	if len(flow.Controller.Ingredients()) != 3 {
		t.Errorf("Ingredients() = %v, want 3 detected", flow.Controller.Ingredients())
	}
}

func TestFlow_AnalyzeFailure(t *testing.T) {
	failure := recipeapi.NewNetworkError(recipeapi.OpDetect, "http://x", errors.New("connection reset"))
	flow := &Flow{
		Controller: New(ContractSplit),
		Service:    &fakeService{err: failure},
		Gallery:    fakeGallery{},
	}
	ctx := context.Background()

	_ = flow.PickPhoto(ctx, "fridge.jpg")
	err := flow.Analyze(ctx)

	if !recipeapi.IsNetworkError(err) {
		t.Errorf("Analyze() error = %v, want network error", err)
	}
	if flow.Controller.State() != StatePhotoPreview {
		t.Errorf("State() = %v, want PhotoPreview", flow.Controller.State())
	}
	if n := flow.Controller.View().Notice; n == nil || n.Title != "Connection Error" {
		t.Errorf("notice = %+v, want Connection Error", n)
	}
}

func TestFlow_PickCancelled(t *testing.T) {
	flow := &Flow{Controller: New(ContractSplit), Gallery: fakeGallery{}}

	if err := flow.PickPhoto(context.Background(), ""); err != nil {
		t.Errorf("PickPhoto(\"\") error = %v, want nil", err)
	}
	if flow.Controller.State() != StateHome {
		t.Errorf("State() = %v, want Home", flow.Controller.State())
	}
	if len(flow.Controller.Notices()) != 0 {
		t.Error("cancelling should not raise a notice")
	}
}

func TestFlow_MediaPermissionDenied(t *testing.T) {
	flow := &Flow{
		Controller:  New(ContractSplit),
		Gallery:     fakeGallery{},
		Permissions: fakePermissions{media: capture.ErrPermissionDenied},
	}

	err := flow.PickPhoto(context.Background(), "fridge.jpg")
	if !errors.Is(err, capture.ErrPermissionDenied) {
		t.Errorf("PickPhoto() error = %v, want ErrPermissionDenied", err)
	}
	if flow.Controller.State() != StateHome {
		t.Errorf("State() = %v, want Home", flow.Controller.State())
	}
	if len(flow.Controller.Notices()) != 1 {
		t.Errorf("len(Notices()) = %d, want 1", len(flow.Controller.Notices()))
	}
}

func TestFlow_Camera(t *testing.T) {
	flow := &Flow{
		Controller:  New(ContractSplit),
		Camera:      fakeCamera{},
		Permissions: fakePermissions{},
	}
	ctx := context.Background()

	if err := flow.OpenCamera(ctx); err != nil {
		t.Fatalf("OpenCamera() error = %v", err)
	}
	if err := flow.TakePhoto(ctx); err != nil {
		t.Fatalf("TakePhoto() error = %v", err)
	}
	if flow.Controller.State() != StatePhotoPreview {
		t.Errorf("State() = %v, want PhotoPreview", flow.Controller.State())
	}
}

func TestFlow_CameraFailure(t *testing.T) {
	flow := &Flow{
		Controller: New(ContractSplit),
		Camera:     fakeCamera{err: capture.ErrCaptureFailed},
	}
	ctx := context.Background()

	if err := flow.OpenCamera(ctx); err != nil {
		t.Fatalf("OpenCamera() error = %v", err)
	}
	if err := flow.TakePhoto(ctx); !errors.Is(err, capture.ErrCaptureFailed) {
		t.Errorf("TakePhoto() error = %v, want ErrCaptureFailed", err)
	}
	if flow.Controller.State() != StateCameraActive {
		t.Errorf("State() = %v, want CameraActive", flow.Controller.State())
	}
}

func TestFlow_GuardErrors(t *testing.T) {
	flow := &Flow{Controller: New(ContractSplit), Service: &fakeService{}}

	if err := flow.Analyze(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Analyze() on Home error = %v, want ErrInvalidTransition", err)
	}
	if err := flow.TakePhoto(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("TakePhoto() on Home error = %v, want ErrInvalidTransition", err)
	}
}
