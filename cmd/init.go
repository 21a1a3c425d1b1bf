package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively generate a config.yaml file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile := "config.yaml"

		if _, err := os.Stat(configFile); err == nil {
			fmt.Printf("config.yaml already exists. Use --force to overwrite.\n")
			return nil
		}

		reader := bufio.NewReader(os.Stdin)

		fmt.Println("Let's set up your config.yaml!")

		fmt.Println("\n--- TOKEN ---")
		tokenEndpoint := prompt(reader, "Token endpoint (e.g. https://login.windows.net/<tenant>/oauth2/token): ")
		clientID := prompt(reader, "Client (application) id: ")
		clientSecret := prompt(reader, "Client secret: ")

		fmt.Println("\n--- MAILBOX ---")
		mailboxUser := prompt(reader, "Mailbox user (e.g. inbox@example.com): ")
		mailboxFolder := prompt(reader, "Folder to watch (e.g. Inbox): ")

		fmt.Println("\n--- RECIPIENTS ---")
		recipients := promptMulti(reader, "Forward-to email(s), in rotation order (comma-separated): ")

		fmt.Println("\n--- AUTO-REPLY ---")
		replyEnabled := prompt(reader, "Send auto-replies to senders? (yes/no): ")
		replySubject := ""
		if strings.HasPrefix(strings.ToLower(replyEnabled), "y") {
			replySubject = prompt(reader, "Auto-reply subject: ")
		}

		content := fmt.Sprintf(`token:
  endpoint: %s
  client_id: %s
  client_secret: %s

mailbox:
  user: %s
  folder: %s

forward_to:
%s

auto_reply:
  enabled: %t
  subject: %s
  exclusions: []

poll_interval: 5
index_file: index.dat
`, tokenEndpoint, clientID, clientSecret,
			mailboxUser, mailboxFolder,
			recipientList(recipients),
			strings.HasPrefix(strings.ToLower(replyEnabled), "y"), replySubject)

		if err := os.WriteFile(configFile, []byte(content), 0o600); err != nil {
			return fmt.Errorf("failed to write config.yaml: %w", err)
		}

		fmt.Println("\n✅ config.yaml created successfully.")
		return nil
	},
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	text, _ := r.ReadString('\n')
	return strings.TrimSpace(text)
}

func promptMulti(r *bufio.Reader, label string) []string {
	raw := prompt(r, label)
	parts := strings.Split(raw, ",")
	var cleaned []string
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

func recipientList(emails []string) string {
	var lines []string
	for _, email := range emails {
		lines = append(lines, fmt.Sprintf("  - email: %s", email))
	}
	return strings.Join(lines, "\n")
}
