package main

import (
	"bufio"
	"bytes"
	"database/sql"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"multistore/pkg/config"
	"multistore/pkg/models"

	_ "github.com/lib/pq"
)

// ANSI
const (
	Reset    = "\033[0m"
	Bold     = "\033[1m"
	Dim      = "\033[2m"
	White    = "\033[97m"
	Black    = "\033[30m"
	Green    = "\033[32m"
	Yellow   = "\033[33m"
	Red      = "\033[31m"
	Cyan     = "\033[36m"
	BgGreen  = "\033[42m"
	BgYellow = "\033[43m"
	BgCyan   = "\033[46m"
)

const (
	composeProject = "multistore"
	composeFile    = "docker-compose.yml"
)

var backends = []string{"mongo", "postgres", "sqlite", "memory"}

var (
	client *apiClient
	pgDB   *sql.DB
)

func main() {
	cfg, err := config.LoadCLI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	client = newAPIClient(cfg.BaseURL, cfg.APIKeyHeader, cfg.APIKey, cfg.Backend)

	// Only used by the tables/sql commands; sql.Open does not dial.
	if db, err := sql.Open("postgres", cfg.Postgres.DSN()); err == nil {
		pgDB = db
		defer pgDB.Close()
	}

	clearScreen()
	printBanner()
	shellLoop()
}

func shellLoop() {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(buildPrompt())

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		parts := strings.Fields(input)

		switch {
		case input == "exit" || input == "quit" || input == "q":
			fmt.Printf("\n%s%s  Bye %s\n\n", BgCyan, Black, Reset)
			return

		case input == "help" || input == "?":
			printHelp()

		case input == "clear" || input == "cls":
			clearScreen()
			printBanner()

		case input == "status" || input == "s":
			printFullStatus()

		case input == "git" || input == "g":
			printGitDetailed()

		case input == "docker" || input == "d":
			printDockerStatus()

		case input == "health" || input == "h":
			printHealthChecks()

		case input == "up":
			shellExec("docker", composeArgs("up", "-d", "--wait")...)

		case input == "down":
			shellExec("docker", composeArgs("down", "-v")...)

		case parts[0] == "logs":
			if len(parts) > 1 {
				shellExec("docker", composeArgs("logs", "-f", "--tail=50", parts[1])...)
			} else {
				shellExec("docker", composeArgs("logs", "-f", "--tail=30")...)
			}

		case parts[0] == "backend" || parts[0] == "b":
			if len(parts) < 2 {
				fmt.Printf("  current backend: %s%s%s\n", Cyan, client.backend, Reset)
			} else {
				useBackend(parts[1])
			}

		case parts[0] == "create-user":
			if len(parts) < 3 {
				fmt.Printf("  %sUsage: create-user <name> <email> [phone]%s\n", Red, Reset)
			} else {
				createUser(parts[1], parts[2], optional(parts, 3))
			}

		case parts[0] == "update-user":
			if len(parts) < 4 {
				fmt.Printf("  %sUsage: update-user <id> <name> <email> [phone]%s\n", Red, Reset)
			} else {
				updateUser(parts[1], parts[2], parts[3], optional(parts, 4))
			}

		case input == "list-users" || input == "users":
			listUsers()

		case parts[0] == "get-user" && len(parts) == 2:
			getUserByID(parts[1])

		case parts[0] == "delete-user" && len(parts) == 2:
			deleteUser(parts[1])

		case input == "count-users":
			countUsers()

		// --- Postgres inspection ---
		case input == "tables":
			showTables(pgDB, "postgres")

		case strings.HasPrefix(input, "sql "):
			rawSQL(pgDB, "postgres", strings.TrimPrefix(input, "sql "))

		default:
			// Pass through to system shell
			shellExecRaw(input)
		}

		fmt.Println()
	}
}

// composeArgs runs against the repository's compose project; start the
// shell from the repository root.
func composeArgs(args ...string) []string {
	return append([]string{"compose", "-p", composeProject, "-f", composeFile}, args...)
}

func optional(parts []string, i int) string {
	if len(parts) > i {
		return parts[i]
	}
	return ""
}

func useBackend(name string) {
	for _, b := range backends {
		if b == name {
			client.backend = name
			fmt.Printf("  %s[ok]%s using %s\n", Green, Reset, name)
			return
		}
	}
	fmt.Printf("  %s[x] unknown backend %q (want one of %s)%s\n", Red, name, strings.Join(backends, ", "), Reset)
}

func buildPrompt() string {
	branch, dirty, staged, modified, untracked := getGitInfo()
	dir := getShortDir()

	barBg := BgGreen
	statusText := "clean"
	if dirty {
		barBg = BgYellow
		parts := []string{}
		if staged > 0 {
			parts = append(parts, fmt.Sprintf("%d staged", staged))
		}
		if modified > 0 {
			parts = append(parts, fmt.Sprintf("%d modified", modified))
		}
		if untracked > 0 {
			parts = append(parts, fmt.Sprintf("%d untracked", untracked))
		}
		statusText = strings.Join(parts, " | ")
	}

	bar := fmt.Sprintf("%s%s %s  %s | %s %s %s%s  %s %s",
		barBg, Black,
		dir,
		branch,
		statusText,
		Reset,
		BgCyan, Black,
		client.backend,
		Reset,
	)

	return fmt.Sprintf("%s\n%s>%s ", bar, Cyan, Reset)
}

func getGitInfo() (branch string, dirty bool, staged, modified, untracked int) {
	branch = strings.TrimSpace(runCmd("git", "rev-parse", "--abbrev-ref", "HEAD"))
	if branch == "" {
		branch = "no-repo"
	}

	status := strings.TrimSpace(runCmd("git", "status", "--porcelain"))
	if status == "" {
		return branch, false, 0, 0, 0
	}

	for _, line := range strings.Split(status, "\n") {
		if len(line) < 2 {
			continue
		}
		x := line[0]
		y := line[1]
		if x == '?' {
			untracked++
		} else if x != ' ' {
			staged++
		}
		if y != ' ' && y != '?' {
			modified++
		}
	}

	return branch, true, staged, modified, untracked
}

func getShortDir() string {
	dir, _ := os.Getwd()
	home, _ := os.UserHomeDir()
	if strings.HasPrefix(dir, home) {
		dir = "~" + dir[len(home):]
	}
	// Shorten to last 2 segments
	parts := strings.Split(dir, string(os.PathSeparator))
	if len(parts) > 2 {
		dir = "../" + strings.Join(parts[len(parts)-2:], "/")
	}
	return dir
}

func printFullStatus() {
	printGitDetailed()
	fmt.Println()
	printDockerStatus()
	fmt.Println()
	printHealthChecks()
}

func printGitDetailed() {
	fmt.Printf("  %s%sGit%s\n", Bold, White, Reset)

	branch, dirty, _, _, _ := getGitInfo()
	lastCommit := strings.TrimSpace(runCmd("git", "log", "--oneline", "-1"))

	if !dirty {
		fmt.Printf("  %s[*]%s %s -- clean\n", Green, Reset, branch)
	} else {
		fmt.Printf("  %s[*]%s %s -- modified\n", Yellow, Reset, branch)
	}
	if lastCommit != "" {
		fmt.Printf("  %s%s%s\n", Dim, lastCommit, Reset)
	}
}

func printDockerStatus() {
	fmt.Printf("  %s%sDocker%s\n", Bold, White, Reset)

	output := strings.TrimSpace(runCmd("docker", "ps", "-a", "--filter", "label=com.docker.compose.project="+composeProject,
		"--format", "{{.Names}}|{{.Status}}"))

	if output == "" {
		fmt.Printf("  %s[-] no containers%s\n", Dim, Reset)
		return
	}

	for _, line := range strings.Split(output, "\n") {
		parts := strings.SplitN(line, "|", 2)
		if len(parts) < 2 {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(parts[0], composeProject+"-"), "-1")

		color, icon := Red, "[-]"
		if strings.Contains(parts[1], "Up") {
			color, icon = Green, "[+]"
		}
		fmt.Printf("  %s%s%s %-22s %s%s%s\n", color, icon, Reset, name, Dim, parts[1], Reset)
	}
}

func printHealthChecks() {
	fmt.Printf("  %s%sHealth%s\n", Bold, White, Reset)

	status, err := client.health()
	if err != nil {
		fmt.Printf("  %s[-]%s %-12s %soffline%s\n", Red, Reset, "api", Red, Reset)
		return
	}
	fmt.Printf("  %s[+]%s %-12s %sok%s\n", Green, Reset, "api", Green, Reset)
	for _, b := range backends {
		state, ok := status[b]
		if !ok {
			continue
		}
		color, icon := Green, "[+]"
		if state != "connected" {
			color, icon = Red, "[-]"
		}
		fmt.Printf("  %s%s%s %-12s %s%s%s\n", color, icon, Reset, b, color, state, Reset)
	}
}

func printFailure(resp *response, err error) {
	if err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
		return
	}
	fmt.Printf("  %s[x] %d%s %s\n", Red, resp.Status, Reset, resp.Message)
}

func printUser(u *models.User) {
	fmt.Printf("  %sid:%s      %s\n", Dim, Reset, u.ID)
	fmt.Printf("  %sname:%s    %s\n", Dim, Reset, u.Name)
	fmt.Printf("  %semail:%s   %s\n", Dim, Reset, u.Email)
	fmt.Printf("  %sphone:%s   %s\n", Dim, Reset, u.Phone)
	fmt.Printf("  %screated:%s %s\n", Dim, Reset, u.CreatedAt.Format(time.RFC3339))
	fmt.Printf("  %supdated:%s %s\n", Dim, Reset, u.UpdatedAt.Format(time.RFC3339))
}

func createUser(name, email, phone string) {
	u, resp, err := client.createUser(models.UserInput{Name: name, Email: email, Phone: phone})
	if u == nil {
		printFailure(resp, err)
		return
	}
	fmt.Printf("  %s[ok] created in %s%s\n", Green, client.backend, Reset)
	printUser(u)
}

func updateUser(id, name, email, phone string) {
	u, resp, err := client.updateUser(id, models.UserInput{Name: name, Email: email, Phone: phone})
	if u == nil {
		printFailure(resp, err)
		return
	}
	fmt.Printf("  %s[ok] updated%s\n", Green, Reset)
	printUser(u)
}

func getUserByID(id string) {
	u, resp, err := client.getUser(id)
	if u == nil {
		printFailure(resp, err)
		return
	}
	printUser(u)
}

func deleteUser(id string) {
	resp, err := client.deleteUser(id)
	if err != nil || !resp.Success {
		printFailure(resp, err)
		return
	}
	fmt.Printf("  %s[ok] %s%s\n", Green, resp.Message, Reset)
}

func listUsers() {
	users, resp, err := client.listUsers()
	if users == nil {
		printFailure(resp, err)
		return
	}

	fmt.Printf("  %s%-26s %-20s %-28s %s%s\n", Bold, "ID", "NAME", "EMAIL", "PHONE", Reset)
	fmt.Printf("  %s%s%s\n", Dim, strings.Repeat("-", 90), Reset)
	for _, u := range users {
		fmt.Printf("  %-26s %-20s %-28s %s\n", u.ID, u.Name, u.Email, u.Phone)
	}
}

func countUsers() {
	_, resp, err := client.listUsers()
	if err != nil || !resp.Success || resp.Count == nil {
		printFailure(resp, err)
		return
	}
	fmt.Printf("  %s%d%s users in %s\n", Bold, *resp.Count, Reset, client.backend)
}

func printHelp() {
	fmt.Println()
	fmt.Printf("  %s%sCommands%s\n", Bold, White, Reset)
	fmt.Printf("  %sstatus%s  s    full dashboard\n", Green, Reset)
	fmt.Printf("  %sgit%s     g    git info\n", Green, Reset)
	fmt.Printf("  %sdocker%s  d    container status\n", Green, Reset)
	fmt.Printf("  %shealth%s  h    api and backend readiness\n", Green, Reset)
	fmt.Println()
	fmt.Printf("  %s--- Stack ---%s\n", Dim, Reset)
	fmt.Printf("  %sup%s           start mongo and postgres\n", Green, Reset)
	fmt.Printf("  %sdown%s         stop stack\n", Green, Reset)
	fmt.Printf("  %slogs%s [svc]   tail logs\n", Green, Reset)
	fmt.Println()
	fmt.Printf("  %s--- Users (current backend) ---%s\n", Dim, Reset)
	fmt.Printf("  %sbackend%s      <%s>\n", Green, Reset, strings.Join(backends, "|"))
	fmt.Printf("  %screate-user%s  <name> <email> [phone]\n", Green, Reset)
	fmt.Printf("  %supdate-user%s  <id> <name> <email> [phone]\n", Green, Reset)
	fmt.Printf("  %susers%s        list users\n", Green, Reset)
	fmt.Printf("  %sget-user%s     <id>  get user by id\n", Green, Reset)
	fmt.Printf("  %sdelete-user%s  <id>\n", Green, Reset)
	fmt.Printf("  %scount-users%s  count users\n", Green, Reset)
	fmt.Println()
	fmt.Printf("  %s--- Postgres ---%s\n", Dim, Reset)
	fmt.Printf("  %stables%s       list tables\n", Green, Reset)
	fmt.Printf("  %ssql%s <query>  run a query\n", Green, Reset)
	fmt.Println()
	fmt.Printf("  %sclear%s        clear screen\n", Green, Reset)
	fmt.Printf("  %sexit%s         quit shell\n", Green, Reset)
	fmt.Println()
	fmt.Printf("  %sAnything else is passed to your system shell.%s\n", Dim, Reset)
}

func printBanner() {
	fmt.Println()
	fmt.Printf("  %s%s>> Multi-Store Users%s\n", Bold, Cyan, Reset)
	fmt.Printf("  %sapi: %s  backend: %s%s\n", Dim, client.baseURL, client.backend, Reset)
	fmt.Printf("  %sType 'help' for commands, or use any shell command%s\n", Dim, Reset)
	fmt.Println()
}

func showTables(db *sql.DB, label string) {
	if db == nil || db.Ping() != nil {
		fmt.Printf("  %s[x] %s db not reachable%s\n", Red, label, Reset)
		return
	}
	rows, err := db.Query("SELECT tablename FROM pg_tables WHERE schemaname = 'public'")
	if err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
		return
	}
	defer rows.Close()
	fmt.Printf("  %s%s%s tables:\n", Bold, label, Reset)
	for rows.Next() {
		var name string
		rows.Scan(&name)
		fmt.Printf("  - %s\n", name)
	}
}

func rawSQL(db *sql.DB, label, query string) {
	if db == nil || db.Ping() != nil {
		fmt.Printf("  %s[x] %s db not reachable%s\n", Red, label, Reset)
		return
	}
	rows, err := db.Query(query)
	if err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
		return
	}
	defer rows.Close()
	cols, _ := rows.Columns()
	fmt.Printf("  %s%s%s\n", Bold, strings.Join(cols, "\t"), Reset)
	vals := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		rows.Scan(ptrs...)
		parts := make([]string, len(cols))
		for i, v := range vals {
			parts[i] = fmt.Sprintf("%v", v)
		}
		fmt.Printf("  %s\n", strings.Join(parts, "\t"))
	}
}

func shellExec(name string, args ...string) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
	}
}

func shellExecRaw(input string) {
	shell, flag := "sh", "-c"
	if _, err := exec.LookPath("bash"); err == nil {
		shell = "bash"
	}

	cmd := exec.Command(shell, flag, input)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Run()
}

func runCmd(name string, args ...string) string {
	cmd := exec.Command(name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Run()
	return out.String()
}

func clearScreen() {
	fmt.Print("\033[H\033[2J")
}
