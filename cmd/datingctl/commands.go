package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oggyb/muzz-dating/internal/client"
	"github.com/oggyb/muzz-dating/internal/feed"
	"github.com/oggyb/muzz-dating/internal/model"
)

// --- accounts ---

func signupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup EMAIL PASSWORD",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return authenticate(cmd, func(s *client.Session, ctx context.Context) (model.Identity, error) {
				return s.SignUp(ctx, args[0], args[1]).Await(ctx)
			})
		},
	}
}

func signinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signin EMAIL PASSWORD",
		Short: "Sign in with an existing account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return authenticate(cmd, func(s *client.Session, ctx context.Context) (model.Identity, error) {
				return s.SignIn(ctx, args[0], args[1]).Await(ctx)
			})
		},
	}
}

func authenticate(cmd *cobra.Command, do func(*client.Session, context.Context) (model.Identity, error)) error {
	s, done, err := connect(false)
	if err != nil {
		return err
	}
	defer done()

	ctx, cancel := callCtx(cmd.Context())
	defer cancel()
	identity, err := do(s, ctx)
	if err != nil {
		return err
	}
	if err := saveSession(identity, s.Token()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", identity.Email, identity.UserID)
	return nil
}

func signoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Revoke the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := connect(true)
			if err != nil {
				return err
			}
			defer done()

			ctx, cancel := callCtx(cmd.Context())
			defer cancel()
			_, callErr := s.SignOut(ctx).Await(ctx)
			if err := clearSession(); err != nil {
				return err
			}
			if callErr != nil {
				return callErr
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

// --- directory ---

func profileCmd() *cobra.Command {
	var (
		name      string
		imagePath string
	)
	cmd := &cobra.Command{
		Use:   "profile [USER_ID]",
		Short: "Show a profile, or edit your own with --name/--image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := connect(true)
			if err != nil {
				return err
			}
			defer done()
			ctx, cancel := callCtx(cmd.Context())
			defer cancel()

			editing := cmd.Flags().Changed("name") || imagePath != ""
			if editing && len(args) > 0 {
				return fmt.Errorf("only your own profile can be edited")
			}

			var u model.User
			if editing {
				var namePtr *string
				if cmd.Flags().Changed("name") {
					namePtr = &name
				}
				var image []byte
				if imagePath != "" {
					if image, err = os.ReadFile(imagePath); err != nil {
						return err
					}
				}
				u, err = s.UpdateProfile(ctx, namePtr, image).Await(ctx)
			} else {
				id := ""
				if len(args) > 0 {
					id = args[0]
				}
				u, err = s.GetUser(ctx, id).Await(ctx)
			}
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), u)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path of a new profile image")
	return cmd
}

func candidatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "candidates",
		Short: "List users you can swipe on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := connect(true)
			if err != nil {
				return err
			}
			defer done()
			ctx, cancel := callCtx(cmd.Context())
			defer cancel()

			users, err := s.Candidates(ctx).Await(ctx)
			if err != nil {
				return err
			}
			for _, u := range users {
				printUser(cmd.OutOrStdout(), u)
			}
			return nil
		},
	}
}

func printUser(w io.Writer, u model.User) {
	image := "no image"
	if u.HasImage() {
		image = fmt.Sprintf("image %d chars", len(*u.ProfileImageData))
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t(%s)\n", u.ID, u.DisplayName, u.Email, image)
}

// --- swipes and matches ---

func likeCmd() *cobra.Command { return verdictCmd("like", true) }
func passCmd() *cobra.Command { return verdictCmd("pass", false) }

func verdictCmd(use string, liked bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " USER_ID",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := connect(true)
			if err != nil {
				return err
			}
			defer done()
			ctx, cancel := callCtx(cmd.Context())
			defer cancel()

			f := s.Pass(ctx, args[0])
			if liked {
				f = s.Like(ctx, args[0])
			}
			res, err := f.Await(ctx)
			if err != nil {
				return err
			}
			if res.Matched {
				fmt.Fprintf(cmd.OutOrStdout(), "It's a match! (%s)\n", res.Match.ID)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "recorded")
			}
			return nil
		},
	}
}

func matchesCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "matches",
		Short: "List your matches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := connect(true)
			if err != nil {
				return err
			}
			defer done()
			out := cmd.OutOrStdout()
			me := s.Identity().UserID

			if !watch {
				ctx, cancel := callCtx(cmd.Context())
				defer cancel()
				matches, err := s.Matches(ctx).Await(ctx)
				if err != nil {
					return err
				}
				printMatches(out, me, matches)
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			failed := make(chan error, 1)
			err = s.MatchFeed().StartListening(ctx, me, func(m []model.Match) {
				fmt.Fprintln(out, "--- matches ---")
				printMatches(out, me, m)
			}, func(err error) { failed <- err })
			if err != nil {
				return err
			}
			defer s.MatchFeed().StopListening()
			return waitFeed(ctx, failed)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep listening for new matches")
	return cmd
}

func printMatches(w io.Writer, me string, matches []model.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "no matches yet")
	}
	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.MatchedAt.Local().Format(time.DateTime), m.Other(me), m.ID)
	}
}

// --- chats ---

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send USER_ID TEXT...",
		Short: "Send a message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := connect(true)
			if err != nil {
				return err
			}
			defer done()
			ctx, cancel := callCtx(cmd.Context())
			defer cancel()

			m, err := s.Send(ctx, args[0], strings.Join(args[1:], " ")).Await(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s\n", m.ID)
			return nil
		},
	}
}

func threadCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "thread USER_ID",
		Short: "Show the conversation with a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := connect(true)
			if err != nil {
				return err
			}
			defer done()
			out := cmd.OutOrStdout()
			me := s.Identity().UserID

			if !watch {
				ctx, cancel := callCtx(cmd.Context())
				defer cancel()
				msgs, err := s.Messages(ctx, args[0]).Await(ctx)
				if err != nil {
					return err
				}
				printMessages(out, me, msgs)
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			failed := make(chan error, 1)
			w, err := s.WatchThread(ctx, args[0], func(snap feed.Snapshot[model.Message]) {
				fmt.Fprintln(out, "--- thread ---")
				printMessages(out, me, snap.Items)
			}, func(err error) { failed <- err })
			if err != nil {
				return err
			}
			defer w.Cancel()
			return waitFeed(ctx, failed)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep listening for new messages")
	return cmd
}

func printMessages(w io.Writer, me string, msgs []model.Message) {
	for _, m := range msgs {
		who := m.SenderID
		if who == me {
			who = "me"
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", m.Timestamp.Local().Format(time.DateTime), who, m.Text)
	}
}

func chatsCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "List your conversations, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := connect(true)
			if err != nil {
				return err
			}
			defer done()
			out := cmd.OutOrStdout()
			me := s.Identity().UserID

			if !watch {
				ctx, cancel := callCtx(cmd.Context())
				defer cancel()
				threads, err := s.Threads(ctx).Await(ctx)
				if err != nil {
					return err
				}
				printThreads(out, me, threads)
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			failed := make(chan error, 1)
			w, err := s.WatchThreads(ctx, func(snap feed.Snapshot[model.ThreadSummary]) {
				fmt.Fprintln(out, "--- chats ---")
				printThreads(out, me, snap.Items)
			}, func(err error) { failed <- err })
			if err != nil {
				return err
			}
			defer w.Cancel()
			return waitFeed(ctx, failed)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep listening for new messages")
	return cmd
}

func printThreads(w io.Writer, me string, threads []model.ThreadSummary) {
	for _, t := range threads {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.LastMessageTimestamp.Local().Format(time.DateTime), t.Other(me), t.LastMessage)
	}
}

// waitFeed blocks until interrupted or the feed reports its error.
func waitFeed(ctx context.Context, failed <-chan error) error {
	select {
	case <-ctx.Done():
		return nil
	case err := <-failed:
		return err
	}
}
