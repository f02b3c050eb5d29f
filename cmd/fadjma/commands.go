package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/layebamba/Fadj-Ma-Frontend/auth"
	"github.com/layebamba/Fadj-Ma-Frontend/dashboard"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/layebamba/Fadj-Ma-Frontend/nav"
	"github.com/layebamba/Fadj-Ma-Frontend/sessions"
	"github.com/layebamba/Fadj-Ma-Frontend/users"
	"github.com/spf13/cobra"
)

type cli struct {
	build func(out io.Writer) (*app, error)
	app   *app
}

func newRootCmd(appName string, build func(out io.Writer) (*app, error)) *cobra.Command {
	c := &cli{build: build}

	root := &cobra.Command{
		Use:           "fadjma",
		Short:         "Console de gestion de la pharmacie Fadj-Ma",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.build(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			displayAppname(cmd.OutOrStdout(), appName)
			return cmd.Help()
		},
	}

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.profileCmd(),
		c.passwordCmd(),
		c.navCmd(),
		c.dashboardCmd(),
	)
	return root
}

// requireSession resolves the stored session and fails when nobody is
// logged in.
func (c *cli) requireSession(ctx context.Context) (*users.User, error) {
	if err := c.app.session.Initialize(ctx); err != nil && !errors.Is(err, errors.ErrAlreadyInitialized) {
		return nil, err
	}
	if c.app.session.Current().State != sessions.StateAuthenticated {
		return nil, errors.Wrapf(errors.ErrNotAuthenticated, "aucune session active, utilisez `fadjma login`")
	}
	return c.app.session.User(), nil
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Se connecter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := c.app.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			printWelcome(cmd.OutOrStdout(), u)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "adresse email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "mot de passe")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var data users.RegisterData
	var role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Créer un compte puis se connecter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := auth.ConfirmPassword(data.Password, data.Password2); err != nil {
				return err
			}
			data.Role = users.RoleType(role)
			u, err := c.app.session.Register(cmd.Context(), data)
			if err != nil {
				return err
			}
			printWelcome(cmd.OutOrStdout(), u)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&data.Email, "email", "", "adresse email")
	f.StringVar(&data.Password, "password", "", "mot de passe")
	f.StringVar(&data.Password2, "password2", "", "confirmation du mot de passe")
	f.StringVar(&data.FirstName, "first-name", "", "prénom")
	f.StringVar(&data.LastName, "last-name", "", "nom")
	f.StringVar(&data.Phone, "phone", "", "téléphone")
	f.StringVar(&data.Gender, "gender", "", "genre")
	f.StringVar(&data.BirthDate, "birth-date", "", "date de naissance (AAAA-MM-JJ)")
	f.StringVar(&role, "role", "", "rôle (ADMIN ou USER)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Se déconnecter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.app.session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Déconnecté.")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Afficher l'utilisateur connecté",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := c.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func (c *cli) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Gérer son profil",
	}

	var email, firstName, lastName, phone string
	update := &cobra.Command{
		Use:   "update",
		Short: "Modifier son profil",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.requireSession(cmd.Context()); err != nil {
				return err
			}
			var p users.ProfileUpdate
			flags := cmd.Flags()
			if flags.Changed("email") {
				p.Email = &email
			}
			if flags.Changed("first-name") {
				p.FirstName = &firstName
			}
			if flags.Changed("last-name") {
				p.LastName = &lastName
			}
			if flags.Changed("phone") {
				p.Phone = &phone
			}
			u, err := c.app.session.UpdateUser(cmd.Context(), p)
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), u)
			return nil
		},
	}
	update.Flags().StringVar(&email, "email", "", "adresse email")
	update.Flags().StringVar(&firstName, "first-name", "", "prénom")
	update.Flags().StringVar(&lastName, "last-name", "", "nom")
	update.Flags().StringVar(&phone, "phone", "", "téléphone")

	avatar := &cobra.Command{
		Use:   "avatar <fichier>",
		Short: "Remplacer sa photo de profil",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.requireSession(cmd.Context()); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			u, err := c.app.session.UploadAvatar(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), u)
			return nil
		},
	}

	cmd.AddCommand(update, avatar)
	return cmd
}

func (c *cli) passwordCmd() *cobra.Command {
	var change users.PasswordChange
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Changer son mot de passe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.requireSession(cmd.Context()); err != nil {
				return err
			}
			if err := c.app.session.ChangePassword(cmd.Context(), change); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Mot de passe modifié.")
			return nil
		},
	}
	cmd.Flags().StringVar(&change.OldPassword, "old", "", "mot de passe actuel")
	cmd.Flags().StringVar(&change.NewPassword, "new", "", "nouveau mot de passe")
	return cmd
}

func (c *cli) navCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nav [chemin]",
		Short: "Lister les sections accessibles ou vérifier un chemin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.session.Initialize(cmd.Context()); err != nil {
				return err
			}
			u := c.app.session.User()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				if redirect, ok := nav.Guard(args[0], u); !ok {
					fmt.Fprintf(out, "%s: redirigé vers %s\n", args[0], redirect)
					return nil
				}
				fmt.Fprintf(out, "%s: autorisé\n", args[0])
				return nil
			}

			items := nav.Visible(u)
			if len(items) == 0 {
				fmt.Fprintf(out, "Aucune section, connectez-vous (%s).\n", nav.Landing(u))
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, item := range items {
				fmt.Fprintf(tw, "%s\t%s\n", item.Name, item.Path)
			}
			return tw.Flush()
		},
	}
}

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Afficher les statistiques du tableau de bord",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := c.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			if !users.CanViewDashboard(u) {
				return errors.Wrapf(errors.ErrForbidden, "tableau de bord réservé aux administrateurs")
			}
			stats, err := c.app.dashboard.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printStats(cmd.OutOrStdout(), stats)
		},
	}
}

func printWelcome(w io.Writer, u *users.User) {
	fmt.Fprintf(w, "Connecté en tant que %s.\n", u.DisplayName())
	fmt.Fprintf(w, "Accueil: %s\n", nav.Landing(u))
}

func printUser(w io.Writer, u *users.User) {
	role := u.RoleDisplay
	if role == "" {
		role = string(u.Role)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Nom\t%s\n", u.DisplayName())
	fmt.Fprintf(tw, "Email\t%s\n", u.Email)
	fmt.Fprintf(tw, "Rôle\t%s\n", role)
	fmt.Fprintf(tw, "Modification\t%s\n", yesNo(users.CanEdit(u)))
	if u.Phone != "" {
		fmt.Fprintf(tw, "Téléphone\t%s\n", u.Phone)
	}
	if u.Avatar != "" {
		fmt.Fprintf(tw, "Avatar\t%s\n", u.Avatar)
	}
	tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "oui"
	}
	return "non"
}

func printStats(w io.Writer, s *dashboard.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Inventaire\t%s\n", s.Inventory.Label())
	fmt.Fprintf(tw, "Revenu\t%.2f FCFA\n", s.TotalRevenue)
	fmt.Fprintf(tw, "Médicaments disponibles\t%d\n", s.MedicinesAvailable)
	fmt.Fprintf(tw, "Pénurie de médicaments\t%d\n", s.LowStockCount)
	fmt.Fprintf(tw, "Médicaments\t%d\n", s.MedicinesCount)
	fmt.Fprintf(tw, "Groupes\t%d\n", s.GroupsCount)
	fmt.Fprintf(tw, "Fournisseurs\t%d\n", s.SuppliersCount)
	fmt.Fprintf(tw, "Clients\t%d\n", s.ClientsCount)
	fmt.Fprintf(tw, "Utilisateurs\t%d\n", s.UsersCount)
	fmt.Fprintf(tw, "Quantité vendue\t%d\n", s.QuantitySold)
	fmt.Fprintf(tw, "Factures générées\t%d\n", s.InvoicesGenerated)
	if s.TopClient != "" {
		fmt.Fprintf(tw, "Client fréquent\t%s\n", s.TopClient)
	}
	return tw.Flush()
}
