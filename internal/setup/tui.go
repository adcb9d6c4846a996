// Package setup implements the first-run terminal configuration wizard.
package setup

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/qmerle/simbot/config"
	"github.com/qmerle/simbot/internal/domain"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// GeneratedConfigPath where the wizard writes its output.
const GeneratedConfigPath = "config.gen.yaml"

func header(step string) {
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("SIMBOT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render(step))
}

// RunTUI launches the terminal configuration wizard and writes the resulting
// YAML to config.gen.yaml.
func RunTUI() error {
	var (
		apiURL           string
		apiKey           string
		model            string
		dbPath           string
		walDir           string
		pollIntervalStr  string
		trackedTokens    []string
		watchlistMarkets string
		confirm          bool
	)

	// defaults
	apiURL = "https://openrouter.ai/api/v1/chat/completions"
	model = "deepseek/deepseek-v3.2-exp"
	dbPath = "simbot.db"
	walDir = "./wal/settlements"
	pollIntervalStr = "15m"
	watchlistMarkets = "ETH-USD-PERP, STRK-USD-PERP"

	header("STEP 1: DECISION MODEL")
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("LLM API URL").
				Value(&apiURL),
			huh.NewInput().
				Title("LLM API Key").
				Description("Leave empty to use SIMBOT_LLM_API_KEY from the environment").
				Value(&apiKey).
				EchoMode(huh.EchoModePassword),
			huh.NewInput().
				Title("Model Name").
				Value(&model),
		),
	).Run()
	if err != nil {
		return err
	}

	header("STEP 2: STORAGE")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("SQLite database path").
				Value(&dbPath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("path cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Settlement journal directory").
				Value(&walDir),
		),
	).Run()
	if err != nil {
		return err
	}

	header("STEP 3: PORTFOLIO")
	tokenOptions := make([]huh.Option[string], 0)
	for _, symbol := range domain.DefaultRegistry().Symbols() {
		tokenOptions = append(tokenOptions, huh.NewOption(symbol, symbol))
	}
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Tracked tokens").
				Description("Tokens included in market info and price feed sections").
				Options(tokenOptions...).
				Value(&trackedTokens),
			huh.NewInput().
				Title("Watchlist markets").
				Description("Comma-separated perpetual markets (e.g. ETH-USD-PERP)").
				Value(&watchlistMarkets),
			huh.NewInput().
				Title("Decision interval").
				Description("Duration string (e.g. 5m, 15m, 1h)").
				Value(&pollIntervalStr).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	header("FINAL CONFIRMATION")
	summary := fmt.Sprintf(
		"Model: %s\nDatabase: %s\nJournal: %s\nInterval: %s\nTokens: %s\nWatchlist: %s\n",
		model, dbPath, walDir, pollIntervalStr,
		strings.Join(trackedTokens, ", "), watchlistMarkets,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	cfg := config.Config{
		DBPath: dbPath,
		WALDir: walDir,
		LLM: config.LLMConfig{
			APIURL: apiURL,
			APIKey: apiKey,
			Model:  model,
		},
		Agents: []config.AgentConfig{
			{
				ID:               uuid.New(),
				RoomID:           uuid.New(),
				PollIntervalStr:  pollIntervalStr,
				TrackedTokens:    trackedTokens,
				WatchlistMarkets: splitMarkets(watchlistMarkets),
			},
		},
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	if err := os.WriteFile(GeneratedConfigPath, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\n✓ Configuration saved to %s\nStarting agent...", GeneratedConfigPath)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func splitMarkets(raw string) []string {
	parts := strings.Split(raw, ",")
	markets := make([]string, 0, len(parts))
	for _, part := range parts {
		if market := strings.TrimSpace(part); market != "" {
			markets = append(markets, market)
		}
	}
	return markets
}
