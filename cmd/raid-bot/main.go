package main

import (
	"context"
	"database/sql"
	"errors"
	"raid-bot/internal/buildinfo"
	"raid-bot/internal/config"
	"raid-bot/internal/db/postgres"
	"raid-bot/internal/db/sqlite"
	"raid-bot/internal/discord"
	"raid-bot/internal/handler"
	"raid-bot/internal/logger"
	"raid-bot/internal/recruit"
	"raid-bot/internal/shutdown"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const sweepTimeout = 2 * time.Minute

type stores struct {
	recruitments recruit.RecruitmentRepository
	participants recruit.ParticipantRepository
	close        func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		db, err := sqlite.InitDB(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqliteStores(db), nil
	default:
		pool, err := postgres.Open(ctx, postgres.Config{
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.DatabaseMaxConns,
		})
		if err != nil {
			return nil, err
		}
		return postgresStores(pool), nil
	}
}

func sqliteStores(db *sql.DB) *stores {
	return &stores{
		recruitments: sqlite.NewRecruitmentRepository(db),
		participants: sqlite.NewParticipantRepository(db),
		close:        func() { _ = db.Close() },
	}
}

func postgresStores(pool *pgxpool.Pool) *stores {
	return &stores{
		recruitments: postgres.NewRecruitmentRepository(pool),
		participants: postgres.NewParticipantRepository(pool),
		close:        pool.Close,
	}
}

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			logger.Fatal().Strs("missing", cfgErr.Missing).Strs("invalid", cfgErr.Invalid).Str("component", "init").Msg("invalid configuration")
		}
		logger.Fatal().Err(err).Str("component", "init").Msg("failed to load configuration")
	}

	logger.Configure(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	info := buildinfo.Current()
	logger.Info().
		Str("component", "init").
		Str("version", info.VersionWithPrefix()).
		Str("commit", info.ShortCommitID()).
		Bool("release", info.IsRelease()).
		Str("store", cfg.StoreDriver).
		Msg("starting raid bot")

	store, err := openStores(context.Background(), cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("component", "init").Str("store", cfg.StoreDriver).Msg("failed to initialize database")
	}
	defer store.close()

	// core
	roster := recruit.NewRosterManager(store.recruitments, store.participants)
	registry := recruit.NewRegistry()
	registrar := recruit.NewRegistrar(store.recruitments, roster, registry, cfg.Channels, cfg.Location)
	sweeper := recruit.NewSweeper(store.recruitments, roster, registry, cfg.Channels)

	// handler
	glassRaidCmd, err := handler.NewRegisterSlashCommand(recruit.CategoryGlassRaid, registrar)
	if err != nil {
		logger.Fatal().Err(err).Str("component", "init").Msg("failed to create command")
	}
	abyssCmd, err := handler.NewRegisterSlashCommand(recruit.CategoryAbyss, registrar)
	if err != nil {
		logger.Fatal().Err(err).Str("component", "init").Msg("failed to create command")
	}
	versionCmd := handler.NewVersionSlashCommand(registry)

	listeners := []discord.InteractionListener{glassRaidCmd, abyssCmd, versionCmd}
	for _, category := range recruit.Categories() {
		listeners = append(listeners,
			handler.NewApplyButtonCommand(category, registry, sweeper),
			handler.NewCancelButtonCommand(category, registry, sweeper),
		)
	}
	interactionDispatcher := &discord.InteractionDispatcher{Listeners: listeners}

	sessionConfig, err := discord.
		NewSessionConfig(
			discord.WithToken(cfg.Token),
			discord.WithGuild(cfg.GuildID),
			discord.WithIntent(discordgo.IntentGuilds),
			discord.WithInteractionCreateHandler(interactionDispatcher.OnInteractionCreate),
			discord.WithSlashCommand(glassRaidCmd),
			discord.WithSlashCommand(abyssCmd),
			discord.WithSlashCommand(versionCmd),
			discord.WithBeforeOpen(func(session *discordgo.Session) error {
				return sweep(sweeper, session)
			}),
		)
	if err != nil {
		logger.Fatal().Err(err).Str("component", "init").Msg("failed to create session config")
	}

	var sm discord.SessionManager
	if err := sm.Open(sessionConfig); err != nil {
		logger.Fatal().Err(err).Str("component", "init").Msg("failed to connect to Discord")
	}
	defer sm.Close()

	logger.Info().Str("component", "init").Int("bindings", registry.Len()).Msg("discord bot started successfully")

	sig := shutdown.WaitForExitSignal()
	logger.Info().Str("component", "init").Str("signal", sig.String()).Msg("shutting down")
}

// sweep はゲートウェイ接続前に既存の募集へBindingを付け直す
// 一覧取得に失敗しても起動は続け、ボタンが押されたときに個別に付け直す
func sweep(sweeper *recruit.Sweeper, session *discordgo.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := sweeper.Run(ctx, handler.NewPlatform(session)); err != nil {
		logger.Error().Err(err).Str("component", "sweep").Msg("failed to list recruitments; bindings will be restored on demand")
	}
	return nil
}
