package admin

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/server/auth"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
	"github.com/dmitrijs2005/gophdiary/internal/server/services"
	"github.com/spf13/cobra"
)

func newMigrateCommand(env *Env, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := env.open(ctx, *configPath, false)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.m.RunMigrations(ctx, s.db); err != nil {
				return fmt.Errorf("migrations error: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newUserAddCommand(env *Env, configPath *string) *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "useradd <email>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(env, cmd, passwordStdin)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := env.open(ctx, *configPath, false)
			if err != nil {
				return err
			}
			defer s.Close()

			u, err := services.NewUserService(s.db, s.m, s.cfg).Register(ctx, args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from the first line of stdin")
	return cmd
}

// readPassword prompts on the terminal without echo, or takes one line of
// stdin when fromStdin is set.
func readPassword(env *Env, cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(cmd.OutOrStdout(), "Enter password: ")
	pw, err := env.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func newSweepCommand(env *Env, configPath *string) *cobra.Command {
	var grace time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove bucket objects that no media row references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := env.open(ctx, *configPath, true)
			if err != nil {
				return err
			}
			defer s.Close()

			if !cmd.Flags().Changed("grace") {
				grace = s.cfg.SweepGrace
			}
			n, err := services.NewOrphanSweeper(s.db, s.m, s.bucket, s.log).Sweep(ctx, grace)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d orphaned objects\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&grace, "grace", 24*time.Hour, "skip objects younger than this")
	return cmd
}

// diaryFor opens a DiaryService acting as the account registered under email.
func diaryFor(s *session, cmd *cobra.Command, email string) (*services.DiaryService, error) {
	u, err := services.NewUserService(s.db, s.m, s.cfg).FindByEmail(cmd.Context(), email)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", email, err)
	}
	return services.NewDiaryService(s.db, s.m, s.bucket, auth.StaticSession(u.ID), s.log, s.cfg), nil
}

func newAttachCommand(env *Env, configPath *string) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "attach <entryId> <kind> <file>",
		Short: "Upload a local file and attach it to an entry",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, fileName := args[0], args[2]
			kind, err := models.ParseMediaKind(args[1])
			if err != nil {
				return err
			}

			f, err := os.Open(fileName)
			if err != nil {
				return err
			}
			defer f.Close()

			s, err := env.open(cmd.Context(), *configPath, true)
			if err != nil {
				return err
			}
			defer s.Close()

			diary, err := diaryFor(s, cmd, email)
			if err != nil {
				return err
			}

			file := models.LocalFile{
				Content:  f,
				Name:     filepath.Base(fileName),
				MimeType: mime.TypeByExtension(filepath.Ext(fileName)),
			}
			storagePath, err := diary.AttachMedia(cmd.Context(), entryID, file, kind)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), storagePath)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "user", "", "email of the entry owner")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newSignURLCommand(env *Env, configPath *string) *cobra.Command {
	var (
		email string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sign-url <storagePath>",
		Short: "Print a time-limited read URL for a stored media object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.open(cmd.Context(), *configPath, true)
			if err != nil {
				return err
			}
			defer s.Close()

			diary, err := diaryFor(s, cmd, email)
			if err != nil {
				return err
			}

			u, err := diary.GetSignedURL(cmd.Context(), args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "user", "", "email of the media owner")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "URL lifetime; 0 uses the configured default")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
