package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"

	"github.com/durmussoy/TaskManagementSystem/client/api"
	"github.com/durmussoy/TaskManagementSystem/client/reminder"
	"github.com/durmussoy/TaskManagementSystem/client/session"
	"github.com/durmussoy/TaskManagementSystem/client/state"
	"github.com/durmussoy/TaskManagementSystem/logging"
)

func main() {
	logging.InitLogger("reminder-agent", "logs/agent.log")

	logging.Logger.Info("Event ID: AGENT_START, Description: Starting Reminder Agent...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_ERROR, Description: Error loading .env file: %v", err)
	}

	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	sessionFile := os.Getenv("SESSION_FILE")
	if sessionFile == "" {
		sessionFile = ".session.json"
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "TaskServerCB",
		MaxRequests: 1,
		Timeout:     2 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	client := api.NewClient(baseURL, breaker)
	sessions := session.NewFileStore(sessionFile)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, err := sessions.Load()
	if err != nil {
		logging.Logger.Warnf("Event ID: SESSION_LOAD_FAILED, Description: Could not load stored session: %v", err)
	}
	if sess == nil {
		username := os.Getenv("AGENT_USERNAME")
		password := os.Getenv("AGENT_PASSWORD")
		if username == "" || password == "" {
			logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: No stored session and AGENT_USERNAME/AGENT_PASSWORD are not set.")
		}

		resp, err := client.Login(ctx, username, password)
		if err != nil {
			logging.Logger.Fatalf("Event ID: LOGIN_FAILED, Description: Login failed for %s: %v", username, err)
		}
		sess = &session.Session{Token: resp.Token, User: resp.User}
		if err := sessions.Save(sess); err != nil {
			logging.Logger.Warnf("Event ID: SESSION_SAVE_FAILED, Description: Could not persist session: %v", err)
		}
		logging.Logger.Infof("Event ID: LOGIN_OK, Description: Logged in as %s.", resp.User.Username)
	} else {
		client.SetToken(sess.Token)
		logging.Logger.Infof("Event ID: SESSION_RESUMED, Description: Resumed session for %s.", sess.User.Username)
	}

	store := state.NewStore()
	actions := reminder.NewActions(client, store)

	if err := actions.Refresh(ctx); err != nil {
		logging.Logger.Fatalf("Event ID: INITIAL_FETCH_FAILED, Description: Could not fetch tasks: %v", err)
	}
	logging.Logger.Infof("Event ID: TASKS_LOADED, Description: Holding %d tasks (%v).", len(store.Tasks()), store.StatusCounts())

	poller := reminder.NewPoller(client, store, sess.User.ID, reminder.ConsoleNotifier{})
	poller.OnUnauthorized = func() {
		if err := sessions.Clear(); err != nil {
			logging.Logger.Warnf("Event ID: SESSION_CLEAR_FAILED, Description: Could not clear session: %v", err)
		}
		logging.Logger.Error("Event ID: FORCED_LOGOUT, Description: Token expired or rejected; session cleared. Restart the agent to log in again.")
		os.Exit(1)
	}

	if err := poller.Start(); err != nil {
		logging.Logger.Fatalf("Event ID: POLLER_START_FAILED, Description: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	poller.Stop()
	logging.Logger.Infof("Event ID: AGENT_STOP, Description: Shutting down with %d activity events recorded.", len(store.Events()))
}
