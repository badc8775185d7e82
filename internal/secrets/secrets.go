package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"jobscout-engine/internal/config"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the engine's secrets in the OS keychain.
const KeyringService = "jobscout"

// ErrNotFound means neither the keychain nor the environment has the secret.
var ErrNotFound = errors.New("secret not found (set it in keychain or via env)")

func get(account, envVar string) (string, error) {
	if strings.TrimSpace(account) != "" {
		v, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(v) != "" {
			return v, nil
		}
	}
	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		return v, nil
	}
	return "", ErrNotFound
}

func set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func del(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// ---- IMAP ----

const EnvIMAPPassword = "JOBSCOUT_IMAP_PASSWORD"

func IMAPKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf("jobscout:imap:%s@%s", cfg.Email.Username, cfg.Email.IMAPHost)
}

func GetIMAPPassword(account string) (string, error) { return get(account, EnvIMAPPassword) }
func SetIMAPPassword(account, password string) error { return set(account, password) }
func DeleteIMAPPassword(account string) error        { return del(account) }

// ---- LLM provider ----

// LLMKeyEnv is the conventional environment variable of each provider.
var LLMKeyEnv = map[string]string{
	"openai":   "OPENAI_API_KEY",
	"googleai": "GOOGLE_API_KEY",
}

func LLMKeyringAccount(provider string) string {
	return "jobscout:llm:" + strings.ToLower(strings.TrimSpace(provider))
}

func GetLLMKey(provider string) (string, error) {
	return get(LLMKeyringAccount(provider), LLMKeyEnv[strings.ToLower(provider)])
}
func SetLLMKey(provider, key string) error { return set(LLMKeyringAccount(provider), key) }
func DeleteLLMKey(provider string) error   { return del(LLMKeyringAccount(provider)) }
