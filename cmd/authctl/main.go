// Command authctl : служебные операции без HTTP сервера.
//
//	authctl [-config config.yaml] register -u alice -e a@x.com
//	authctl [-config config.yaml] sweep
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"expense-tracker/config"
	"expense-tracker/internal/logging"
	"expense-tracker/internal/ports"
	"expense-tracker/internal/repository"
	"expense-tracker/internal/service"
	"expense-tracker/internal/util"

	"golang.org/x/term"
)

const usage = `usage: authctl [-config path] <command> [flags]

commands:
  register -u USERNAME -e EMAIL   создать пользователя (пароль читается с терминала)
  sweep                           удалить давно истекшие refresh токены
`

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "authctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	global := flag.NewFlagSet("authctl", flag.ContinueOnError)
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configPath := global.String("config", config.DefaultConfigPath, "путь к YAML конфигурации")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("не указана команда")
	}

	cfg, err := config.LoadConfig(config.ResolveConfigPath(*configPath))
	if err != nil {
		return err
	}
	logger := logging.NewJSONLogger(os.Stderr, cfg.Logging.Level)

	db, err := config.SetupDatabase(ctx, &cfg.DatabaseConfig)
	if err != nil {
		return err
	}
	defer db.Close()

	command, rest := global.Arg(0), global.Args()[1:]
	switch command {
	case "register":
		return register(ctx, cfg, db, logger, rest)
	case "sweep":
		return sweep(ctx, cfg, db, logger)
	default:
		global.Usage()
		return fmt.Errorf("неизвестная команда %q", command)
	}
}

func register(ctx context.Context, cfg *config.AppConfig, db *config.Database, logger logging.Logger, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	username := fs.String("u", "", "имя пользователя")
	email := fs.String("e", "", "email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *email == "" {
		return errors.New("нужны -u и -e")
	}

	password, err := readPassword()
	if err != nil {
		return err
	}

	credentials, err := service.NewCredentialService(repository.NewUserRepository(db), db.DB, util.SystemClock{}, logger)
	if err != nil {
		return err
	}

	user, err := credentials.Register(ctx, *username, *email, password)
	if err != nil {
		status, text := util.ErrorStatus(err)
		return fmt.Errorf("регистрация отклонена (%d %s): %w", status, text, err)
	}

	fmt.Println(user.UUID)
	return nil
}

func sweep(ctx context.Context, cfg *config.AppConfig, db *config.Database, logger logging.Logger) error {
	redisClient, err := config.SetupRedis(ctx, &cfg.RedisConfig)
	if err != nil {
		return err
	}

	var locks ports.LockRepository
	if redisClient != nil {
		defer redisClient.Close()
		locks = repository.NewLockRepository(redisClient)
	}

	store := service.NewRefreshTokenStore(repository.NewRefreshTokenRepository(db), db.DB,
		cfg.JWT.RefreshTokenTTL, cfg.Cleanup.Retention, logger)
	sweeper := service.NewSweeper(store, locks, util.SystemClock{}, logger, cfg.Cleanup.Interval, cfg.Cleanup.LockTTL)

	removed, err := sweeper.RunOnce(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("удалено токенов: %d\n", removed)
	return nil
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("пароль читается только с терминала")
	}

	fmt.Fprint(os.Stderr, "Пароль: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения пароля: %w", err)
	}

	fmt.Fprint(os.Stderr, "Повторите пароль: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения пароля: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("пароли не совпадают")
	}
	return strings.TrimRight(string(first), "\r\n"), nil
}
