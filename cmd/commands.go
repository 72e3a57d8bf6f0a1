package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/urfave/cli/v2"

	"ui_forge_server/config"
	"ui_forge_server/internal/ai"
	"ui_forge_server/internal/auth"
	"ui_forge_server/internal/publish"
	"ui_forge_server/internal/types"
	"ui_forge_server/internal/utils"
)

func buildGenerator(cfg config.Config) (*ai.Generator, error) {
	model, err := ai.NewModel(ai.ProviderConfig{
		Provider: cfg.AIProvider,
		APIKey:   cfg.ProviderAPIKey(),
		BaseURL:  cfg.ProviderBaseURL(),
		Model:    cfg.AIModel,
	})
	if err != nil {
		return nil, err
	}

	var imageModel ai.Model
	if cfg.ImageModel != "" && cfg.ImageModel != cfg.AIModel {
		imageModel, err = ai.NewModel(ai.ProviderConfig{
			Provider: cfg.AIProvider,
			APIKey:   cfg.ProviderAPIKey(),
			BaseURL:  cfg.ProviderBaseURL(),
			Model:    cfg.ImageModel,
		})
		if err != nil {
			return nil, err
		}
	}

	log.Printf("AI provider %s, model %s", cfg.AIProvider, model.Name())
	return ai.NewGenerator(model, imageModel, generatorSettings(cfg)), nil
}

// generatorSettings copies the sampling parameters. AI_TEMPERATURE always has a
// value (viper default 0.7), so 0 is a deliberate choice and is kept.
func generatorSettings(cfg config.Config) ai.Settings {
	settings := ai.DefaultSettings()
	settings.Temperature = cfg.Temperature
	if cfg.MaxTokens > 0 {
		settings.MaxTokens = cfg.MaxTokens
	}
	return settings
}

// buildRegistry wraps the configured generator with every provider a request
// may switch to. The active provider keeps AI_MODEL as its default model.
func buildRegistry(cfg config.Config) (*ai.Registry, error) {
	def, err := buildGenerator(cfg)
	if err != nil {
		return nil, err
	}
	return ai.NewRegistry(def, cfg.AIProvider, generatorSettings(cfg), providerConfigs(cfg)...), nil
}

func providerConfigs(cfg config.Config) []ai.ProviderConfig {
	active := ai.CanonicalProvider(cfg.AIProvider)
	geminiCfg := ai.ProviderConfig{Provider: "gemini", APIKey: cfg.GoogleAPIKey, BaseURL: cfg.GeminiBaseURL, Model: ai.DefaultGeminiModel}
	openaiCfg := ai.ProviderConfig{Provider: "openai", APIKey: cfg.OpenAIKey, BaseURL: cfg.OpenAIBaseURL, Model: ai.DefaultOpenAIModel}
	if cfg.AIModel != "" {
		if active == "openai" {
			openaiCfg.Model = cfg.AIModel
		} else {
			geminiCfg.Model = cfg.AIModel
		}
	}
	return []ai.ProviderConfig{geminiCfg, openaiCfg}
}

// generatorFor resolves the --provider and --model flags.
func generatorFor(c *cli.Context, cfg config.Config) (*ai.Generator, error) {
	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return registry.Generator(c.String("provider"), c.String("model"))
}

// buildPublisher returns the configured publisher. A non-empty dir forces a
// disk publisher writing there.
func buildPublisher(ctx context.Context, cfg config.Config, dir string) (publish.Publisher, error) {
	if dir != "" || cfg.PublishTarget != "s3" {
		if dir == "" {
			dir = cfg.ExportDir
		}
		return publish.NewDiskPublisher(dir), nil
	}

	awsCfg, err := publish.LoadAWSConfig(ctx, cfg.AWSRegion, cfg.AWSProfile)
	if err != nil {
		return nil, err
	}
	arn, err := publish.ValidateCredentials(ctx, awsCfg)
	if err != nil {
		return nil, err
	}
	log.Printf("Publishing to s3://%s as %s", cfg.S3Bucket, arn)
	return publish.NewS3PublisherFromConfig(awsCfg, cfg.S3Bucket)
}

var (
	providerFlag = &cli.StringFlag{Name: "provider", Usage: "gemini or openai (default AI_PROVIDER)"}
	modelFlag    = &cli.StringFlag{Name: "model", Usage: "Model of the provider (default AI_MODEL or the provider default)"}
)

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate one HTML page and publish it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Page/component name", Required: true},
			&cli.StringFlag{Name: "text", Usage: "Free-text description of the page"},
			&cli.StringSliceFlag{Name: "requirement", Usage: "Additional requirement (repeatable, with --text)"},
			&cli.StringFlag{Name: "figma-url", Usage: "Figma file URL"},
			&cli.StringFlag{Name: "image", Usage: "Path to a screenshot or mockup"},
			&cli.StringFlag{Name: "description", Usage: "Extra description for --figma-url or --image"},
			&cli.StringFlag{Name: "framework", Usage: "vanilla, tailwind or bootstrap", Value: string(types.FrameworkVanilla)},
			&cli.BoolFlag{Name: "responsive", Value: true},
			&cli.BoolFlag{Name: "animations"},
			&cli.BoolFlag{Name: "interactive", Value: true},
			&cli.StringFlag{Name: "out", Usage: "Write the page to this directory instead of the configured target"},
			&cli.BoolFlag{Name: "stdout", Usage: "Print the HTML instead of publishing it"},
			providerFlag,
			modelFlag,
		},
		Action: generateCommand,
	}
}

func generateCommand(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	input, err := inputFromFlags(c)
	if err != nil {
		return err
	}
	framework, err := types.ParseFramework(c.String("framework"))
	if err != nil {
		return err
	}
	req := types.GenerationRequirements{
		Name:        c.String("name"),
		Framework:   framework,
		Responsive:  c.Bool("responsive"),
		Animations:  c.Bool("animations"),
		Interactive: c.Bool("interactive"),
	}

	generator, err := generatorFor(c, cfg)
	if err != nil {
		return err
	}

	progress := ai.ProgressFunc(func(p types.Progress) {
		fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", p.Progress, p.Message)
	})
	result, err := generator.GenerateHTML(c.Context, input, req, progress)
	if err != nil {
		return err
	}

	if c.Bool("stdout") {
		fmt.Println(result.HTML)
		return nil
	}

	publisher, err := buildPublisher(c.Context, cfg, c.String("out"))
	if err != nil {
		return err
	}
	location, err := publisher.Publish(c.Context, result)
	if err != nil {
		return err
	}
	fmt.Printf("Generated %q in %d ms\n", result.Name, result.Metadata.GenerationTime)
	fmt.Printf("Features: %s\n", strings.Join(result.Features, ", "))
	fmt.Printf("Saved to %s\n", location)
	return nil
}

// inputFlags are the input-selecting flags of the generate command.
type inputFlags struct {
	Text         string
	Requirements []string
	FigmaURL     string
	Image        string
	Description  string
}

func inputFromFlags(c *cli.Context) (types.GenerationInput, error) {
	return inputFlags{
		Text:         c.String("text"),
		Requirements: c.StringSlice("requirement"),
		FigmaURL:     c.String("figma-url"),
		Image:        c.String("image"),
		Description:  c.String("description"),
	}.input()
}

// input builds the generation input. Exactly one of Text, FigmaURL or Image
// must be non-blank.
func (f inputFlags) input() (types.GenerationInput, error) {
	set := 0
	for _, v := range []string{f.Text, f.FigmaURL, f.Image} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}
	if set != 1 {
		return nil, errors.New("exactly one of --text, --figma-url or --image is required")
	}

	switch {
	case strings.TrimSpace(f.Text) != "":
		var reqs []string
		for _, r := range f.Requirements {
			if strings.TrimSpace(r) != "" {
				reqs = append(reqs, r)
			}
		}
		return types.TextInput{Description: f.Text, Requirements: reqs}, nil
	case strings.TrimSpace(f.FigmaURL) != "":
		description := f.Description
		if strings.TrimSpace(description) == "" {
			description = "Figma design: " + f.FigmaURL
		}
		return types.DesignInput{URL: f.FigmaURL, Description: description}, nil
	default:
		img, err := readImageFile(f.Image)
		if err != nil {
			return nil, err
		}
		img.Description = f.Description
		return *img, nil
	}
}

func readImageFile(path string) (*types.ImageInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	mimeType := utils.DetermineImageType(path, data)
	if !utils.IsImageType(mimeType) {
		return nil, fmt.Errorf("%s is not an image (%s)", path, mimeType)
	}
	return &types.ImageInput{Data: data, MIMEType: mimeType, FileName: filepath.Base(path)}, nil
}

func imageCmd() *cli.Command {
	return &cli.Command{
		Name:  "image",
		Usage: "Generate an image from a prompt",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "prompt", Required: true},
			&cli.StringFlag{Name: "reference", Usage: "Optional reference image"},
			&cli.StringFlag{Name: "out", Usage: "File to write the image to (data URI on stdout otherwise)"},
			providerFlag,
			modelFlag,
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			generator, err := generatorFor(c, cfg)
			if err != nil {
				return err
			}

			req := types.ImageRequest{Prompt: c.String("prompt")}
			if ref := c.String("reference"); ref != "" {
				if req.Reference, err = readImageFile(ref); err != nil {
					return err
				}
			}

			result, err := generator.GenerateImage(c.Context, req)
			if err != nil {
				return err
			}
			if result.DataURI == "" {
				fmt.Println(result.Text)
				return nil
			}
			out := c.String("out")
			if out == "" {
				fmt.Println(result.DataURI)
				return nil
			}
			_, data, err := utils.ParseDataURI(result.DataURI)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Printf("Image saved to %s\n", out)
			return nil
		},
	}
}

func signinCmd() *cli.Command {
	return &cli.Command{
		Name:  "signin",
		Usage: "Sign in against the auth backend",
		Flags: []cli.Flag{&cli.StringFlag{Name: "email"}},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			email := c.String("email")
			if email == "" {
				if err := survey.AskOne(&survey.Input{Message: "Email:"}, &email); err != nil {
					return err
				}
			}
			var password string
			if err := survey.AskOne(&survey.Password{Message: "Password:"}, &password); err != nil {
				return err
			}
			if err := auth.ValidateSignin(email, password); err != nil {
				return err
			}

			token, err := auth.NewClient(cfg.APIBaseURL, nil).SignIn(c.Context, email, password)
			if err != nil {
				return cliAuthError(err)
			}
			fmt.Println("Sign in successful!")
			fmt.Println(token)
			return nil
		},
	}
}

func signupCmd() *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "Create an account on the auth backend",
		Flags: []cli.Flag{&cli.StringFlag{Name: "email"}},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			answers := struct {
				Email           string `survey:"email"`
				Password        string `survey:"password"`
				ConfirmPassword string `survey:"confirmPassword"`
			}{Email: c.String("email")}

			var qs []*survey.Question
			if answers.Email == "" {
				qs = append(qs, &survey.Question{Name: "email", Prompt: &survey.Input{Message: "Email:"}})
			}
			qs = append(qs,
				&survey.Question{Name: "password", Prompt: &survey.Password{Message: "Password:"}},
				&survey.Question{Name: "confirmPassword", Prompt: &survey.Password{Message: "Confirm password:"}},
			)
			if err := survey.Ask(qs, &answers); err != nil {
				return err
			}

			// Mismatch and length are rejected here, before the backend is contacted.
			if err := auth.ValidateSignup(answers.Email, answers.Password, answers.ConfirmPassword); err != nil {
				return err
			}
			msg, err := auth.NewClient(cfg.APIBaseURL, nil).SignUp(c.Context, answers.Email, answers.Password)
			if err != nil {
				return cliAuthError(err)
			}
			fmt.Println(msg)
			return nil
		},
	}
}

func cliAuthError(err error) error {
	var apiErr *auth.APIError
	if errors.As(err, &apiErr) {
		return errors.New(apiErr.Message)
	}
	return fmt.Errorf("network error, please try again: %w", err)
}
