package users

import "github.com/spf13/cobra"

// UsersCmd is the parent command for account management operations
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage arena accounts",
	Long:  `Commands for managing arena accounts directly against the database.`,
}

func init() {
	createCmd.Flags().StringVar(&emailFlag, "email", "", "Email address of the account")
	createCmd.Flags().StringVar(&usernameFlag, "username", "", "Display name (defaults to the email local part)")
	createCmd.Flags().StringVar(&passwordFlag, "password", "", "Password (use --stdin to avoid shell history)")
	createCmd.Flags().StringVar(&roleFlag, "role", "", "Profile role: host or participant (default unset)")
	createCmd.Flags().StringVar(&instituteFlag, "institute", "", "Institute name for host accounts")
	createCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin instead of --password flag")

	UsersCmd.AddCommand(createCmd)
}
