package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/internal/iocache"
	"github.com/huangsam/commitpulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// registrySetup opens only the registry. The cache stays disabled.
func registrySetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	backend := schema.DatabaseBackend(viper.GetString("registry-backend"))
	connStr := viper.GetString("registry-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr, viper.GetString("secret-key")); err != nil {
		return fmt.Errorf("failed to initialize registry: %w", err)
	}
	cfg.RegistryBackend = backend
	cfg.RegistryDBConnect = connStr
	return nil
}

// requireFlag returns the viper value of a scope flag or fails.
func requireFlag(key string) string {
	v := strings.TrimSpace(viper.GetString(key))
	if v == "" {
		contract.LogFatal("Missing flag", fmt.Errorf("--%s is required", key))
	}
	return v
}

// registryCmd manages products, repositories, members and credentials.
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage products, repositories, members and access tokens",
	Long: `Manage the registry that maps products to repositories and users to tokens.

Tokens are sealed with --secret-key before they are stored and opened
only when a request needs them.

Examples:
  # Create a product and link a repository
  commitpulse registry product add --org acme --name Web
  commitpulse registry repo link --product <id> --full-name acme/web --provider-id 1234

  # Let alice see acme's products and store her token
  commitpulse registry member add --org acme --user alice --role owner
  COMMITPULSE_SECRET_KEY=... commitpulse registry token set --user alice`,
}

// registryStatusCmd shows registry status.
var registryStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display registry statistics and connection details",
	PreRunE: registrySetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetRegistryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get registry status", err)
		}
		iocache.PrintCacheStatus(status)
	},
}

// registryMigrateCmd runs registry migrations.
var registryMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run registry schema migrations",
	Long: `Migrate the registry schema to the latest or a specific version.

Examples:
  commitpulse registry migrate --target-version 1`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfigFile()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		backend := schema.DatabaseBackend(viper.GetString("registry-backend"))
		connStr := viper.GetString("registry-db-connect")
		if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
			contract.LogFatal("Invalid registry configuration", err)
		}
		target, _ := cmd.Flags().GetInt("target-version")
		if err := iocache.Migrate(iocache.RegistryMigrations, backend, connStr, target); err != nil {
			contract.LogFatal("Failed to migrate registry", err)
		}
	},
}

var productCmd = &cobra.Command{Use: "product", Short: "Manage products"}

var productAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Create a product in an organization",
	PreRunE: registrySetup,
	Run: func(cmd *cobra.Command, _ []string) {
		name, _ := cmd.Flags().GetString("name")
		color, _ := cmd.Flags().GetString("product-color")
		id, _ := cmd.Flags().GetString("id")
		product, err := iocache.Manager.GetRegistryStore().AddProduct(rootCtx, schema.Product{
			ID:             id,
			Name:           name,
			Color:          color,
			OrganizationID: requireFlag("org"),
		})
		if err != nil {
			contract.LogFatal("Cannot add product", err)
		}
		fmt.Printf("Added product %s (%s).\n", product.ID, product.Name)
	},
}

var repoCmd = &cobra.Command{Use: "repo", Short: "Manage linked repositories"}

var repoLinkCmd = &cobra.Command{
	Use:     "link",
	Short:   "Link a repository to a product",
	PreRunE: registrySetup,
	Run: func(cmd *cobra.Command, _ []string) {
		fullName, _ := cmd.Flags().GetString("full-name")
		if strings.Count(fullName, "/") != 1 {
			contract.LogFatal("Cannot link repository", fmt.Errorf("--full-name must look like owner/name (received %q)", fullName))
		}
		branch, _ := cmd.Flags().GetString("branch")
		providerID, _ := cmd.Flags().GetInt64("provider-id")
		repo, err := iocache.Manager.GetRegistryStore().LinkRepo(rootCtx, schema.RepositoryRef{
			ProductID:     requireFlag("product"),
			FullName:      fullName,
			DefaultBranch: branch,
			ProviderID:    providerID,
		})
		if err != nil {
			contract.LogFatal("Cannot link repository", err)
		}
		fmt.Printf("Linked %s as %s.\n", repo.FullName, repo.ID)
	},
}

var memberCmd = &cobra.Command{Use: "member", Short: "Manage organization members"}

var memberAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add a user to an organization",
	PreRunE: registrySetup,
	Run: func(cmd *cobra.Command, _ []string) {
		role, _ := cmd.Flags().GetString("role")
		switch role {
		case schema.RoleOwner, schema.RoleAdmin, schema.RoleMember:
		default:
			contract.LogFatal("Cannot add member", fmt.Errorf("invalid role %q. must be owner, admin, member", role))
		}
		member := schema.OrgMember{OrganizationID: requireFlag("org"), UserID: requireFlag("user"), Role: role}
		if err := iocache.Manager.GetRegistryStore().AddMember(rootCtx, member); err != nil {
			contract.LogFatal("Cannot add member", err)
		}
		fmt.Printf("Added %s to %s as %s.\n", member.UserID, member.OrganizationID, member.Role)
	},
}

var tokenCmd = &cobra.Command{Use: "token", Short: "Manage access tokens"}

var tokenSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Seal and store a user's access token",
	Long: `Store the GitHub access token of --user. The token is read from --token,
or prompted for without echo when stdin is a terminal.`,
	PreRunE: registrySetup,
	Run: func(cmd *cobra.Command, _ []string) {
		userID := requireFlag("user")
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			var err error
			if token, err = readToken(); err != nil {
				contract.LogFatal("Cannot read token", err)
			}
		}
		if err := iocache.Manager.GetRegistryStore().SetToken(rootCtx, userID, token); err != nil {
			contract.LogFatal("Cannot store token", err)
		}
		fmt.Printf("Stored token for %s.\n", userID)
	},
}

// readToken prompts for a token on an interactive terminal.
func readToken() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--token is required when stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "Token: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", errors.New("empty token")
	}
	return token, nil
}
