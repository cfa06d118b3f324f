package main

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-gridform/pkg/appctx"
)

var (
	signinUserID string
	signinName   string
	signinToken  string
)

// signinCmd stores the operator identity and bearer token in the app state
// file. Revealing sensitive fields requires a signed-in user.
var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Store the operator and API token",
	RunE:  runSignin,
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Forget the stored operator and token",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cfg, logger)
		if err != nil {
			return err
		}
		rt.app.SignOut()
		if err := rt.app.Save(rt.state); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "로그아웃되었습니다")
		return nil
	},
}

func init() {
	signinCmd.Flags().StringVar(&signinUserID, "user", "", "Operator id")
	signinCmd.Flags().StringVar(&signinName, "name", "", "Display name")
	signinCmd.Flags().StringVar(&signinToken, "token", "", "Bearer token (prompted when omitted)")
}

func runSignin(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cfg, logger)
	if err != nil {
		return err
	}

	var questions []*survey.Question
	if strings.TrimSpace(signinUserID) == "" {
		questions = append(questions, &survey.Question{
			Name:     "user",
			Prompt:   &survey.Input{Message: "사용자 ID"},
			Validate: survey.Required,
		})
	}
	if signinToken == "" {
		questions = append(questions, &survey.Question{
			Name:     "token",
			Prompt:   &survey.Password{Message: "API 토큰"},
			Validate: survey.Required,
		})
	}
	answers := struct {
		User  string `survey:"user"`
		Token string `survey:"token"`
	}{User: signinUserID, Token: signinToken}
	if len(questions) > 0 {
		if err := survey.Ask(questions, &answers); err != nil {
			return err
		}
	}

	user := appctx.User{ID: strings.TrimSpace(answers.User), Name: strings.TrimSpace(signinName)}
	if user.Name == "" {
		user.Name = user.ID
	}
	rt.app.SignIn(user, answers.Token)
	if err := rt.app.Save(rt.state); err != nil {
		return err
	}
	logger.Debug("signed in", zap.String("user", user.ID))
	fmt.Fprintf(cmd.OutOrStdout(), "%s 님으로 로그인되었습니다\n", user.Name)
	return nil
}
