package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Kazbonfim/rocketseat-downloader2/pkg/session"
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/sources"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Autentica na plataforma e salva a sessão",
	Long:  "Faz login na Rocketseat e persiste a sessão; as próximas execuções não pedem credenciais",
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")

		store := session.NewStore()
		if force {
			cobra.CheckErr(store.Delete())
		}

		existing, err := store.Load()
		cobra.CheckErr(err)
		if existing != nil {
			fmt.Println("✓ Sessão já existe. Use --force para autenticar novamente.")
			return
		}

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		reader := bufio.NewReader(os.Stdin)
		if email == "" {
			fmt.Print("Seu email Rocketseat: ")
			line, _ := reader.ReadString('\n')
			email = strings.TrimSpace(line)
		}
		if password == "" {
			fmt.Print("Sua senha: ")
			line, _ := reader.ReadString('\n')
			password = strings.TrimSpace(line)
		}

		fmt.Println("Realizando login...")
		source := sources.NewSkylab(session.New(sources.BaseURL), store)
		name, warning, err := source.Login(email, password)
		cobra.CheckErr(err)
		if warning != nil {
			fmt.Printf("Aviso: %v (a sessão segue válida em memória)\n", warning)
		}
		if name != "" {
			fmt.Printf("Bem-vindo, %s!\n", name)
		} else {
			fmt.Println("✓ Login realizado.")
		}
	},
}

func init() {
	loginCmd.Flags().StringP("email", "e", "", "Email da conta")
	loginCmd.Flags().StringP("password", "p", "", "Senha da conta")
	loginCmd.Flags().Bool("force", false, "Descarta a sessão salva e autentica de novo")
}
