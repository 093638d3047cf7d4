package cmd

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Rorical/Ausmalbar/internal/config"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage admin profiles",
	Long:  `Manage profiles for different Ausmalbar admins and sessions.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		fmt.Printf("Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Println("Available Profiles:")
		for _, name := range slices.Sorted(maps.Keys(cfg.Profiles)) {
			profile := cfg.Profiles[name]
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Printf("  %s%s\n", name, marker)
			fmt.Printf("    Base URL: %s\n", profile.BaseURL)
			fmt.Printf("    Session: %s\n", presence(profile.SessionID, "Yes", "No"))
			fmt.Println()
		}
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		name := args[0]
		profile, exists := cfg.Profiles[name]
		if !exists {
			log.Fatal().Msgf("Profile '%s' does not exist", name)
		}

		fmt.Printf("Profile: %s\n", name)
		fmt.Printf("Base URL: %s\n", profile.BaseURL)
		fmt.Printf("Generate path: %s\n", orDefault(profile.GeneratePath, config.DefaultGeneratePath))
		fmt.Printf("Confirm path: %s\n", orDefault(profile.ConfirmPath, config.DefaultConfirmPath))
		fmt.Printf("Session ID: %s\n", presence(profile.SessionID, "Set (hidden for security)", "Not set"))
		fmt.Printf("CSRF token: %s\n", presence(profile.CSRFToken, "Set (hidden for security)", "Not set"))
		timeUnit := profile.TimeUnitMS
		if timeUnit <= 0 {
			timeUnit = config.DefaultTimeUnitMS
		}
		fmt.Printf("Time unit: %dms\n", timeUnit)
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		var name string
		if len(args) > 0 {
			name = args[0]
		} else {
			prompt := promptui.Prompt{
				Label: "Profile name",
			}
			var err error
			name, err = prompt.Run()
			if err != nil {
				log.Fatal().Err(err).Msg("Prompt failed")
			}
		}

		if _, exists := cfg.Profiles[name]; exists {
			log.Fatal().Msgf("Profile '%s' already exists", name)
		}

		profile, err := promptProfile(config.DefaultProfile())
		if err != nil {
			log.Fatal().Err(err).Msg("Prompt failed")
		}

		cfg.Profiles[name] = profile
		if err := cfg.Save(); err != nil {
			log.Fatal().Err(err).Msg("Failed to save config")
		}

		fmt.Printf("Profile '%s' added successfully!\n", name)
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		name := profileArg(cfg, args, "Select profile to edit")

		profile, exists := cfg.Profiles[name]
		if !exists {
			log.Fatal().Msgf("Profile '%s' does not exist", name)
		}

		profile, err := promptProfile(profile)
		if err != nil {
			log.Fatal().Err(err).Msg("Prompt failed")
		}

		cfg.Profiles[name] = profile
		if err := cfg.Save(); err != nil {
			log.Fatal().Err(err).Msg("Failed to save config")
		}

		fmt.Printf("Profile '%s' updated successfully!\n", name)
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete [profile-name]",
	Short: "Delete a profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		name := profileArg(cfg, args, "Select profile to delete")

		if _, exists := cfg.Profiles[name]; !exists {
			log.Fatal().Msgf("Profile '%s' does not exist", name)
		}

		confirmPrompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete profile '%s'", name),
			IsConfirm: true,
		}
		if _, err := confirmPrompt.Run(); err != nil {
			fmt.Println("Deletion cancelled")
			return
		}

		delete(cfg.Profiles, name)

		if cfg.ActiveProfile == name {
			if len(cfg.Profiles) == 0 {
				// Never leave the config without a profile
				cfg.Profiles["default"] = config.DefaultProfile()
			}
			cfg.ActiveProfile = slices.Sorted(maps.Keys(cfg.Profiles))[0]
		}

		if err := cfg.Save(); err != nil {
			log.Fatal().Err(err).Msg("Failed to save config")
		}

		fmt.Printf("Profile '%s' deleted successfully!\n", name)
	},
}

var switchProfileCmd = &cobra.Command{
	Use:   "switch [profile-name]",
	Short: "Switch to a different profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		var name string
		if len(args) > 0 {
			name = args[0]
		} else {
			var others []string
			for _, n := range slices.Sorted(maps.Keys(cfg.Profiles)) {
				if n != cfg.ActiveProfile {
					others = append(others, n)
				}
			}
			if len(others) == 0 {
				fmt.Println("No other profiles available to switch to")
				return
			}
			name = selectProfile(others, "Select profile to switch to")
		}

		if err := cfg.UseProfile(name); err != nil {
			log.Fatal().Err(err).Msg("Failed to switch profile")
		}
		if err := cfg.Save(); err != nil {
			log.Fatal().Err(err).Msg("Failed to save config")
		}

		fmt.Printf("Switched to profile '%s'\n", name)
	},
}

// profileArg returns the profile named on the command line, or lets the user
// pick one.
func profileArg(cfg *config.Config, args []string, label string) string {
	if len(args) > 0 {
		return args[0]
	}
	names := slices.Sorted(maps.Keys(cfg.Profiles))
	if len(names) == 0 {
		log.Fatal().Msg("No profiles available")
	}
	return selectProfile(names, label)
}

func selectProfile(names []string, label string) string {
	prompt := promptui.Select{
		Label: label,
		Items: names,
	}
	_, name, err := prompt.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Selection failed")
	}
	return name
}

// promptProfile asks for every profile field, offering the current values.
func promptProfile(profile config.Profile) (config.Profile, error) {
	var err error

	baseURLPrompt := promptui.Prompt{
		Label:    "Base URL",
		Default:  profile.BaseURL,
		Validate: validateBaseURL,
	}
	if profile.BaseURL, err = baseURLPrompt.Run(); err != nil {
		return profile, err
	}

	sessionPrompt := promptui.Prompt{
		Label:   "Session ID (sessionid cookie)",
		Default: profile.SessionID,
		Mask:    '*',
	}
	if profile.SessionID, err = sessionPrompt.Run(); err != nil {
		return profile, err
	}

	csrfPrompt := promptui.Prompt{
		Label:   "CSRF token (optional)",
		Default: profile.CSRFToken,
		Mask:    '*',
	}
	if profile.CSRFToken, err = csrfPrompt.Run(); err != nil {
		return profile, err
	}

	generatePrompt := promptui.Prompt{
		Label:   "Generate path",
		Default: orDefault(profile.GeneratePath, config.DefaultGeneratePath),
	}
	if profile.GeneratePath, err = generatePrompt.Run(); err != nil {
		return profile, err
	}

	confirmPrompt := promptui.Prompt{
		Label:   "Confirm path",
		Default: orDefault(profile.ConfirmPath, config.DefaultConfirmPath),
	}
	if profile.ConfirmPath, err = confirmPrompt.Run(); err != nil {
		return profile, err
	}

	timeUnit := profile.TimeUnitMS
	if timeUnit <= 0 {
		timeUnit = config.DefaultTimeUnitMS
	}
	timeUnitPrompt := promptui.Prompt{
		Label:    "Time unit in ms",
		Default:  strconv.Itoa(timeUnit),
		Validate: validatePositiveInt,
	}
	raw, err := timeUnitPrompt.Run()
	if err != nil {
		return profile, err
	}
	profile.TimeUnitMS, _ = strconv.Atoi(raw)

	return profile, nil
}

func validateBaseURL(input string) error {
	u, err := url.Parse(input)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("enter an absolute URL such as https://admin.example.com")
	}
	return nil
}

func validatePositiveInt(input string) error {
	n, err := strconv.Atoi(input)
	if err != nil || n <= 0 {
		return errors.New("enter a positive number")
	}
	return nil
}

func presence(value, set, unset string) string {
	if value != "" {
		return set
	}
	return unset
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func init() {
	// Add subcommands to profile
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(deleteProfileCmd)
	profileCmd.AddCommand(switchProfileCmd)
}
