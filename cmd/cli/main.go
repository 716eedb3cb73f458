package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "event":
		handleEvent(args)
	case "admin":
		handleAdmin(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: campusmap auth <signup|login|logout|who>")
		return
	}

	switch args[0] {
	case "signup":
		signupUser(args[1:])
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", args[0])
	}
}

func handleEvent(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: campusmap event <list|get|delete>")
		return
	}

	switch args[0] {
	case "list":
		listEvents(args[1:])
	case "get":
		getEvent(args[1:])
	case "delete":
		deleteEvent(args[1:])
	default:
		fmt.Printf("unknown event command: %s\n", args[0])
	}
}

func handleAdmin(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: campusmap admin <users|role|pending|approve>")
		return
	}

	switch args[0] {
	case "users":
		listUsers(args[1:])
	case "role":
		updateRole(args[1:])
	case "pending":
		listPending(args[1:])
	case "approve":
		approveEvent(args[1:])
	default:
		fmt.Printf("unknown admin command: %s\n", args[0])
	}
}

// Auth commands
func signupUser(args []string) {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	language := fs.String("language", "", "preferred language (optional)")

	fs.Parse(args)

	if *email == "" || *username == "" || *password == "" {
		fmt.Println("Error: email, username, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"email":    *email,
		"username": *username,
		"password": *password,
	}
	if *language != "" {
		payload["language"] = *language
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/users/signup", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		fmt.Printf("✓ User registered: %s\n", *email)
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/users/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s (%v)\n", *email, result["userRole"])
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logoutUser() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	preview := token
	if len(preview) > 20 {
		preview = preview[:20]
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", preview)
}

// Event commands
func listEvents(args []string) {
	_ = args
	resp, err := http.Get(getAPIURL() + "/events")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var events []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&events)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCREATOR\tAPPROVED")
	for _, e := range events {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", e["id"], e["title"], e["creatorName"], e["approved"])
	}
	w.Flush()
}

func getEvent(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: campusmap event get <event-id>")
		return
	}
	resp, err := http.Get(getAPIURL() + "/events/" + args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var event map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&event)
	out, _ := json.MarshalIndent(event, "", "  ")
	fmt.Println(string(out))
}

func deleteEvent(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: campusmap event delete <event-id>")
		return
	}
	req, _ := http.NewRequest("DELETE", getAPIURL()+"/events/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 200 {
		fmt.Printf("✓ Event %s deleted\n", args[0])
	} else {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ Delete failed: %v\n", result)
	}
}

// Admin commands
func listUsers(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/admin/users", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var users []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&users)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tUSERNAME\tROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", u["id"], u["email"], u["username"], u["role"])
	}
	w.Flush()
}

func updateRole(args []string) {
	fs := flag.NewFlagSet("role", flag.ExitOnError)
	userID := fs.String("user", "", "user id")
	role := fs.String("role", "", "new role (USER, STAFF, ADMIN)")

	fs.Parse(args)

	if *userID == "" || *role == "" {
		fmt.Println("Error: user and role are required")
		fs.PrintDefaults()
		return
	}

	data, _ := json.Marshal(map[string]string{"role": *role})
	req, _ := http.NewRequest("PUT", getAPIURL()+"/admin/users/"+*userID+"/role", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 200 {
		fmt.Printf("✓ User %s is now %s\n", *userID, *role)
	} else {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ Role update failed: %v\n", result)
	}
}

func listPending(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/admin/events/pending", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var events []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&events)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCREATOR")
	for _, e := range events {
		fmt.Fprintf(w, "%v\t%v\t%v\n", e["id"], e["title"], e["creatorName"])
	}
	w.Flush()
}

func approveEvent(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: campusmap admin approve <event-id>")
		return
	}
	req, _ := http.NewRequest("PUT", getAPIURL()+"/admin/events/"+args[0]+"/approve", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 200 {
		fmt.Printf("✓ Event %s approved\n", args[0])
	} else {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ Approve failed: %v\n", result)
	}
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("CAMPUSMAP_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.campusmap/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.campusmap", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`CampusMap CLI

Usage:
  campusmap <command> [options]

Commands:
  auth   User authentication (signup, login, logout, who)
  event  Event operations (list, get, delete)
  admin  Admin operations (users, role, pending, approve) - admin access required
  help   Show this help message

Environment Variables:
  CAMPUSMAP_API    API endpoint (default: http://localhost:8080/api)

Examples:
  campusmap auth signup -email user@example.com -username user -password pass
  campusmap auth login -email user@example.com -password pass
  campusmap event list
  campusmap admin approve 42
`)
}
