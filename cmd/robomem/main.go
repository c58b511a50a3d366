package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/robomem/internal/config"
	"github.com/abdul-hamid-achik/robomem/internal/mcp"
	"github.com/abdul-hamid-achik/robomem/internal/memsvc"
	"github.com/abdul-hamid-achik/robomem/internal/observe"
	"github.com/abdul-hamid-achik/robomem/internal/version"
	"github.com/abdul-hamid-achik/robomem/internal/web"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "robomem",
	Short:   "Robot observation memory over a managed memory service",
	Version: version.Full(),
	Long: `robomem lets a navigation robot persist and recall free-text
observations about its environment through a managed memory service.

Observations are stored with optional location, timestamp and condition
tags, recalled via semantic search, compared against prior observations
at the same location, and grouped into a naive spatial map.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("robomem %s\n", version.Version)
		fmt.Printf("  commit:  %s\n", version.Commit)
		fmt.Printf("  built:   %s\n", version.Date)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server, exposing the four
observation tools to AI assistants. Serves over HTTP (SSE and streamable
HTTP transports) by default, or over stdio with --mcp.`,
	RunE: runServe,
}

var rememberCmd = &cobra.Command{
	Use:   "remember <observation>",
	Short: "Store an observation",
	Long: `Store an observation in the memory service. Location, timestamp and
conditions tags are optional; when any tag is given the observation is
stored as a tagged block, otherwise the raw text is stored verbatim.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemember,
}

var recallCmd = &cobra.Command{
	Use:   "recall <query>",
	Short: "Search stored observations",
	Long: `Search stored observations with a natural language query and print
the ranked results.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecall,
}

var changesCmd = &cobra.Command{
	Use:   "changes <observation>",
	Short: "Detect changes at a location",
	Long: `Store the current observation tagged with a location, then report up
to two of the most relevant prior observations at that location.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChanges,
}

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Build the spatial map",
	Long: `Group stored observations by their location tag and print the
resulting spatial map. Covers up to the first 50 listed observations.`,
	RunE: runMap,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage robomem configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default global config file",
	RunE:  runConfigInit,
}

func init() {
	rootCmd.SetVersionTemplate("robomem version {{.Version}}\n")

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	serveCmd.Flags().String("host", "", "server host (default from config)")
	serveCmd.Flags().IntP("port", "p", 0, "server port (default from config)")
	serveCmd.Flags().Bool("mcp", false, "serve MCP over stdio instead of HTTP")

	rememberCmd.Flags().StringP("location", "l", "", "location tag")
	rememberCmd.Flags().StringP("timestamp", "t", "", "ISO-8601 timestamp tag")
	rememberCmd.Flags().StringP("conditions", "c", "", "environmental conditions tag")
	rememberCmd.Flags().StringP("user", "u", "", "identity to store under")

	recallCmd.Flags().StringP("user", "u", "", "identity to search under")

	changesCmd.Flags().StringP("location", "l", "", "location identifier (required)")
	changesCmd.Flags().StringP("user", "u", "", "identity to compare under")
	changesCmd.MarkFlagRequired("location")

	mapCmd.Flags().StringP("user", "u", "", "identity to aggregate")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(rememberCmd)
	rootCmd.AddCommand(recallCmd)
	rootCmd.AddCommand(changesCmd)
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(configCmd)
}

// loadService loads config and builds the memory service client.
func loadService() (*config.Config, memsvc.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	client := memsvc.NewClient(memsvc.ClientConfig{
		BaseURL: cfg.Service.BaseURL,
		APIKey:  cfg.Service.APIKey,
		Timeout: cfg.Timeout(),
	})
	return cfg, client, nil
}

// resolveUser picks the --user flag value, falling back to config.
func resolveUser(cmd *cobra.Command, cfg *config.Config) string {
	user, _ := cmd.Flags().GetString("user")
	if user != "" {
		return user
	}
	return cfg.Robot.UserID
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, svc, err := loadService()
	if err != nil {
		return err
	}

	host, _ := cmd.Flags().GetString("host")
	if host == "" {
		host = cfg.Server.Host
	}
	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = cfg.Server.Port
	}
	stdio, _ := cmd.Flags().GetBool("mcp")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("shutting down")
		cancel()
	}()

	// Push project-level extraction instructions; serving continues even if
	// the service rejects them.
	pushCtx, pushCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := svc.UpdateProject(pushCtx, observe.ProjectInstructions); err != nil {
		log.Printf("failed to update project instructions: %v", err)
	}
	pushCancel()

	mcpServer := mcp.NewSDKServer(mcp.SDKServerConfig{
		Service:     svc,
		DefaultUser: cfg.Robot.UserID,
	})

	if stdio {
		return mcpServer.Run(ctx)
	}

	webServer := web.NewServer(web.ServerConfig{
		Host:        host,
		Port:        port,
		MCP:         mcpServer.MCP(),
		Service:     svc,
		DefaultUser: cfg.Robot.UserID,
	})

	log.Printf("serving MCP on http://%s:%d (SSE at /sse, streamable at /mcp)", host, port)

	errChan := make(chan error, 1)
	go func() {
		errChan <- webServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return nil
	}
}

func runRemember(cmd *cobra.Command, args []string) error {
	cfg, svc, err := loadService()
	if err != nil {
		return err
	}

	location, _ := cmd.Flags().GetString("location")
	timestamp, _ := cmd.Flags().GetString("timestamp")
	conditions, _ := cmd.Flags().GetString("conditions")

	var meta *observe.Metadata
	if location != "" || timestamp != "" || conditions != "" {
		meta = &observe.Metadata{
			Location:   location,
			Timestamp:  timestamp,
			Conditions: conditions,
		}
	}

	text := strings.Join(args, " ")
	content := observe.FormatObservation(text, meta)
	user := resolveUser(cmd, cfg)

	observe.NewRecorder(svc).Remember(cmd.Context(), content, user)

	fmt.Printf("Stored observation for %s\n", user)
	return nil
}

func runRecall(cmd *cobra.Command, args []string) error {
	cfg, svc, err := loadService()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	results := observe.NewRetriever(svc).Recall(cmd.Context(), query, resolveUser(cmd, cfg))

	fmt.Println(observe.RenderResults(results))
	return nil
}

func runChanges(cmd *cobra.Command, args []string) error {
	cfg, svc, err := loadService()
	if err != nil {
		return err
	}

	location, _ := cmd.Flags().GetString("location")
	observation := strings.Join(args, " ")

	recorder := observe.NewRecorder(svc)
	retriever := observe.NewRetriever(svc)
	detector := observe.NewDetector(recorder, retriever)

	report := detector.DetectChanges(cmd.Context(), observation, location, resolveUser(cmd, cfg))

	rendered, err := report.Render()
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	fmt.Println(rendered)
	return nil
}

func runMap(cmd *cobra.Command, args []string) error {
	cfg, svc, err := loadService()
	if err != nil {
		return err
	}

	report, err := observe.NewAggregator(svc).BuildSpatialMap(cmd.Context(), resolveUser(cmd, cfg))
	if err != nil {
		return fmt.Errorf("failed to build spatial map: %w", err)
	}

	rendered, err := report.Render()
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	fmt.Println(rendered)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	rendered, err := cfg.RenderYAML()
	if err != nil {
		return err
	}
	fmt.Print(rendered)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := config.WriteDefaultConfig()
	if err != nil {
		return err
	}
	fmt.Printf("Config file: %s\n", path)
	fmt.Println("Set your memory service API key via MEM0_API_KEY or service.api_key.")
	return nil
}
