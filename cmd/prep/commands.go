package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/prep/internal/capture"
	"github.com/muurk/prep/internal/config"
	"github.com/muurk/prep/internal/discovery"
	"github.com/muurk/prep/internal/logging"
	"github.com/muurk/prep/internal/recipeapi"
	"github.com/muurk/prep/internal/session"
	"github.com/muurk/prep/internal/tui"
	"github.com/muurk/prep/internal/ui"
)

// Global flags
var (
	serviceURL   string
	contractName string
	timeout      time.Duration
	outputFormat string
	logLevel     string
	logFile      string
	envFiles     []string
)

// Cook command flags
var (
	useCamera bool
	addItems  []string
	dropItems []string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serviceURL, "url", "", "Service base URL, e.g. http://192.168.1.20:8000/api (skips discovery)")
	rootCmd.PersistentFlags().StringVar(&contractName, "contract", "", "Service contract (split, combined)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (default 30s)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Load environment variables from these files (default .env)")

	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(cookCmd)
}

// setup loads .env files and initializes logging before any command runs
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return fmt.Errorf("failed to load environment file: %w", err)
	}
	if err := logging.InitializeWithOptions(logging.Options{
		Level:   logLevel,
		File:    logFile,
		Console: true,
	}); err != nil {
		return err
	}
	logging.Debug("Starting", zap.String("command", cmd.CommandPath()))
	return nil
}

// env is what every service command needs: resolved settings, the chosen
// contract, a printer and a service client
type env struct {
	settings config.Settings
	contract session.Contract
	printer  *ui.Printer
	client   *recipeapi.Client
}

func newEnv(ctx context.Context) (*env, error) {
	format, err := ui.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	resolver := &config.Resolver{
		Registry: registry,
		Flags: config.Overrides{
			BaseURL:  serviceURL,
			Contract: contractName,
			Timeout:  timeout,
		},
		Discover: discovery.DiscoverBaseURL,
	}
	settings := resolver.Resolve(ctx)

	contract, err := session.ParseContract(settings.Contract)
	if err != nil {
		return nil, err
	}

	client := newClient(settings)

	logging.Debug("Resolved settings",
		zap.String("base_url", settings.BaseURL),
		zap.String("source", string(settings.BaseURLSource)),
		zap.String("contract", string(contract)),
		zap.Duration("timeout", settings.Timeout))

	return &env{
		settings: settings,
		contract: contract,
		printer:  ui.NewPrinter(os.Stdout, format),
		client:   client,
	}, nil
}

// newClient builds a service client with its own session ID, so one-shot
// commands get correlated log lines without a controller
func newClient(settings config.Settings) *recipeapi.Client {
	client := recipeapi.NewClient(settings.BaseURL)
	client.SetTimeout(settings.Timeout)
	client.SessionID = uuid.NewString()
	return client
}

// newSession creates a controller and tags the client with its ID
func (e *env) newSession() *session.Controller {
	ctrl := session.New(e.contract)
	e.client.SessionID = ctrl.ID()
	return ctrl
}

func (e *env) galleryDir() string {
	if e.settings.GalleryDir != "" {
		return e.settings.GalleryDir
	}
	return capture.DefaultGalleryDir()
}

func (e *env) serviceParams() []ui.Param {
	return []ui.Param{
		{Key: "Service", Value: e.settings.BaseURL},
		{Key: "Source", Value: string(e.settings.BaseURLSource)},
		{Key: "Contract", Value: string(e.contract)},
	}
}

// uiCmd launches the interactive terminal UI
var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the interactive UI",
	Long: `Launch the full-screen terminal UI.

Take a photo with the camera (requires ffmpeg) or pick one from the gallery,
review the detected ingredients, and generate a recipe. Press h on any screen
to return home.`,
	Example: `  # Use the configured service
  prep ui

  # Use a specific service and log to a file
  prep ui --url http://192.168.1.20:8000/api --log-level debug --log-file prep.log`,
	RunE: runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd.Context())
	if err != nil {
		return err
	}

	dir, err := capture.NewSessionDir()
	if err != nil {
		return fmt.Errorf("failed to create capture directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	camera := capture.NewFFmpegCamera(e.settings.CameraDevice, e.settings.Quality, dir)
	gallery := e.galleryDir()

	err = tui.Run(tui.Options{
		Context:     cmd.Context(),
		Controller:  e.newSession(),
		Service:     e.client,
		Camera:      camera,
		Gallery:     capture.NewFileGallery(gallery),
		Permissions: capture.NewSystemPermissions(camera.Device(), gallery),
		ServiceURL:  e.settings.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("ui error: %w", err)
	}
	return nil
}

// detectCmd uploads a photo for ingredient detection
var detectCmd = &cobra.Command{
	Use:   "detect <image>",
	Short: "Detect ingredients in a photo",
	Long: `Upload a photo to the detect-ingredients endpoint and print the
ingredients the service found.`,
	Example: `  prep detect fridge.jpg

  # JSON output for scripting
  prep detect fridge.jpg --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func runDetect(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd.Context())
	if err != nil {
		return err
	}

	var detected []string
	runner := ui.NewRunner(e.printer, ui.RunnerConfig{
		Title:   "Detect",
		Command: "prep detect " + args[0],
		Params:  e.serviceParams(),
		Steps:   []string{"Load photo", "Detect ingredients"},
	})
	err = runner.Run(func(onStep ui.StepCallback) ([]ui.Param, error) {
		photo, err := loadPhoto(cmd.Context(), args[0], onStep)
		if err != nil {
			return nil, err
		}

		onStep(2, ui.StepRunning, "")
		detected, err = e.client.Detect(cmd.Context(), photo)
		if err != nil {
			onStep(2, ui.StepFailed, "")
			return nil, err
		}
		onStep(2, ui.StepComplete, fmt.Sprintf("%d found", len(detected)))
		return []ui.Param{{Key: "Photo", Value: photo.Name()}}, nil
	})
	if err != nil {
		return err
	}

	if !e.printer.JSON() {
		e.printer.Newline()
	}
	return e.printer.PrintIngredients(detected)
}

// generateCmd asks for a recipe from an ingredient list
var generateCmd = &cobra.Command{
	Use:   "generate <ingredient>...",
	Short: "Generate a recipe from ingredients",
	Long: `Send an ingredient list to the generate-recipe endpoint and print the
recipe. Blank entries are dropped; duplicates are sent as given.`,
	Example: `  prep generate eggs tomato onion

  # Multi-word ingredients need quoting
  prep generate "2 eggs" "spring onion"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd.Context())
	if err != nil {
		return err
	}

	var ingredients []string
	for _, arg := range args {
		if s := strings.TrimSpace(arg); s != "" {
			ingredients = append(ingredients, s)
		}
	}

	var recipe *recipeapi.Recipe
	runner := ui.NewRunner(e.printer, ui.RunnerConfig{
		Title:   "Generate",
		Command: "prep generate " + strings.Join(args, " "),
		Params:  e.serviceParams(),
		Steps:   []string{"Generate recipe"},
	})
	err = runner.Run(func(onStep ui.StepCallback) ([]ui.Param, error) {
		if len(ingredients) == 0 {
			onStep(1, ui.StepFailed, "")
			return nil, session.ErrNoIngredients
		}

		onStep(1, ui.StepRunning, "")
		recipe, err = e.client.Generate(cmd.Context(), ingredients)
		if err != nil {
			onStep(1, ui.StepFailed, "")
			return nil, err
		}
		onStep(1, ui.StepComplete, recipe.Title)
		return []ui.Param{{Key: "Ingredients", Value: fmt.Sprintf("%d", len(ingredients))}}, nil
	})
	if err != nil {
		return err
	}

	if !e.printer.JSON() {
		e.printer.Newline()
	}
	return e.printer.PrintRecipe(recipe)
}

// scanCmd uses the combined endpoint
var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Detect ingredients and generate a recipe in one call",
	Long: `Upload a photo to the scan-ingredients endpoint, which detects
ingredients and generates a recipe in a single request.`,
	Example: `  prep scan fridge.jpg --format json`,
	Args:    cobra.ExactArgs(1),
	RunE:    runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd.Context())
	if err != nil {
		return err
	}

	var result *recipeapi.ScanResult
	runner := ui.NewRunner(e.printer, ui.RunnerConfig{
		Title:   "Scan",
		Command: "prep scan " + args[0],
		Params:  e.serviceParams(),
		Steps:   []string{"Load photo", "Scan ingredients"},
	})
	err = runner.Run(func(onStep ui.StepCallback) ([]ui.Param, error) {
		photo, err := loadPhoto(cmd.Context(), args[0], onStep)
		if err != nil {
			return nil, err
		}

		onStep(2, ui.StepRunning, "")
		result, err = e.client.Scan(cmd.Context(), photo)
		if err != nil {
			onStep(2, ui.StepFailed, "")
			return nil, err
		}
		onStep(2, ui.StepComplete, result.Recipe.Title)
		return []ui.Param{{Key: "Photo", Value: photo.Name()}}, nil
	})
	if err != nil {
		return err
	}

	if !e.printer.JSON() {
		e.printer.Newline()
	}
	return e.printer.PrintScan(result)
}

// loadPhoto validates a photo path as step 1
func loadPhoto(ctx context.Context, path string, onStep ui.StepCallback) (*capture.Photo, error) {
	onStep(1, ui.StepRunning, "")
	photo, err := capture.NewFileGallery("").Pick(ctx, path)
	if err != nil {
		onStep(1, ui.StepFailed, "")
		return nil, err
	}
	onStep(1, ui.StepComplete, photo.ContentType)
	return photo, nil
}

// cookCmd runs the whole session without the UI
var cookCmd = &cobra.Command{
	Use:   "cook [image]",
	Short: "Run the full photo to recipe flow",
	Long: `Run the same steps as the interactive UI without it: pick a photo (or
capture one with --camera), detect ingredients, apply --add and --remove edits,
and generate a recipe.

With the combined contract the photo is scanned in one call; edits then
trigger a second generate from the edited list.`,
	Example: `  # Detect and cook
  prep cook fridge.jpg

  # Fix the detected list before generating
  prep cook fridge.jpg --add basil --remove onion

  # Capture from the camera instead of reading a file
  prep cook --camera`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCook,
}

func init() {
	cookCmd.Flags().BoolVar(&useCamera, "camera", false, "Capture a photo with the camera (requires ffmpeg)")
	cookCmd.Flags().StringArrayVar(&addItems, "add", nil, "Ingredient to add after detection (repeatable)")
	cookCmd.Flags().StringArrayVar(&dropItems, "remove", nil, "Ingredient to remove after detection (repeatable)")
}

func runCook(cmd *cobra.Command, args []string) error {
	if useCamera == (len(args) == 1) {
		return errors.New("give either an image path or --camera")
	}

	e, err := newEnv(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	dir, err := capture.NewSessionDir()
	if err != nil {
		return fmt.Errorf("failed to create capture directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	camera := capture.NewFFmpegCamera(e.settings.CameraDevice, e.settings.Quality, dir)
	ctrl := e.newSession()
	flow := &session.Flow{
		Controller:  ctrl,
		Service:     e.client,
		Camera:      camera,
		Gallery:     capture.NewFileGallery(""),
		Permissions: capture.NewSystemPermissions(camera.Device(), ""),
	}

	source := "camera"
	if !useCamera {
		source = args[0]
		flow.Permissions = nil
	}
	submit := "Detect ingredients"
	if e.contract == session.ContractCombined {
		submit = "Scan ingredients"
	}

	runner := ui.NewRunner(e.printer, ui.RunnerConfig{
		Title:   "Cook",
		Command: "prep " + strings.Join(os.Args[1:], " "),
		Params:  append(e.serviceParams(), ui.Param{Key: "Photo", Value: source}),
		Steps:   []string{"Get photo", submit, "Edit ingredients", "Generate recipe"},
	})
	err = runner.Run(func(onStep ui.StepCallback) ([]ui.Param, error) {
		onStep(1, ui.StepRunning, "")
		if useCamera {
			err = flow.OpenCamera(ctx)
			if err == nil {
				err = flow.TakePhoto(ctx)
			}
		} else {
			err = flow.PickPhoto(ctx, args[0])
		}
		if err != nil {
			onStep(1, ui.StepFailed, "")
			return nil, err
		}
		onStep(1, ui.StepComplete, ctrl.Photo().Name())

		onStep(2, ui.StepRunning, "")
		if err := flow.Submit(ctx); err != nil {
			onStep(2, ui.StepFailed, "")
			return nil, err
		}
		onStep(2, ui.StepComplete, fmt.Sprintf("%d found", len(ctrl.Ingredients())))

		edited := len(addItems) > 0 || len(dropItems) > 0
		if !edited {
			onStep(3, ui.StepSkipped, "no edits")
		} else {
			onStep(3, ui.StepRunning, "")
			if err := applyEdits(ctrl, addItems, dropItems); err != nil {
				onStep(3, ui.StepFailed, "")
				return nil, err
			}
			onStep(3, ui.StepComplete, fmt.Sprintf("%d ingredient(s)", len(ctrl.Ingredients())))
		}

		if ctrl.State() == session.StateRecipeResult {
			onStep(4, ui.StepSkipped, "included in scan")
		} else {
			onStep(4, ui.StepRunning, "")
			if err := flow.Generate(ctx); err != nil {
				onStep(4, ui.StepFailed, "")
				return nil, err
			}
			onStep(4, ui.StepComplete, ctrl.Recipe().Title)
		}

		return []ui.Param{
			{Key: "Session", Value: ctrl.ID()},
			{Key: "Ingredients", Value: strings.Join(ctrl.Ingredients(), ", ")},
		}, nil
	})
	if err != nil {
		return err
	}

	if !e.printer.JSON() {
		e.printer.Newline()
	}
	return e.printer.PrintRecipe(ctrl.Recipe())
}

// applyEdits adds and removes ingredients by name. With a recipe already on
// screen (combined contract) it goes back to the editor first.
func applyEdits(ctrl *session.Controller, add, remove []string) error {
	if ctrl.State() == session.StateRecipeResult {
		if err := ctrl.Back(); err != nil {
			return err
		}
	}

	for _, name := range remove {
		index := indexOf(ctrl.Ingredients(), name)
		if index < 0 {
			return fmt.Errorf("cannot remove %q: not in the ingredient list", name)
		}
		if err := ctrl.RemoveIngredient(index); err != nil {
			return err
		}
	}
	for _, name := range add {
		if err := ctrl.AddIngredient(name); err != nil {
			return fmt.Errorf("cannot add %q: %w", name, err)
		}
	}
	return nil
}

// indexOf finds name case-insensitively
func indexOf(list []string, name string) int {
	name = strings.TrimSpace(name)
	for i, item := range list {
		if strings.EqualFold(item, name) {
			return i
		}
	}
	return -1
}
