package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-campaigns/internal/tui"
	"github.com/xavierca1/ligue-campaigns/internal/usecase"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Autentica no backend e salva o token localmente",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if password == "" {
			prompt := tui.NewLoginPrompt(email)
			if _, err := tea.NewProgram(prompt).Run(); err != nil {
				return err
			}
			if !prompt.Submitted() {
				return errors.New("login cancelado")
			}
			email, password = prompt.Email(), prompt.Password()
		}

		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.session.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Bem-vindo, %s (%s)\n", user.Name, user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Apaga o token salvo",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.session.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("👋 Sessão encerrada.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Mostra o usuário da sessão salva",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{restoreSession: true})
		if err != nil {
			if usecase.HasCode(err, usecase.CodeNotAuthenticated) {
				fmt.Println("Nenhuma sessão ativa. Rode 'dashboard login'.")
				return nil
			}
			return err
		}
		defer a.Close()

		user := a.session.Profile()
		fmt.Printf("%s <%s>\n", user.Name, user.Email)
		if user.Role != "" {
			fmt.Printf("  perfil: %s\n", user.Role)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "email do usuário")
	loginCmd.Flags().String("password", "", "senha (sem ela, o formulário interativo é aberto)")
}
