package command

const helpText = "Available commands:\n" +
	"`config list` - List all configurations\n" +
	"`config show <name>` - Show details of a specific configuration\n" +
	"`config set mode <fixed|risk>` - Set the active mode\n" +
	"`config set active <name>` - Set the active configuration\n" +
	"`config create <name>` - Create a new configuration\n" +
	"`config delete <name>` - Delete a configuration\n" +
	"`config set fixed <name> <limits> <values>` - Set fixed lot values\n" +
	"`config set risk <name> <limits> <percentages>` - Set risk percentages\n" +
	"Example: `config set fixed default 2 0.5 0.5`\n\n" +
	"Take profit commands:\n" +
	"`tp <symbol_type> <pips>` - Set take profit pips for a symbol type\n" +
	"Example: `tp forex 10` - Sets 10 pips TP for forex pairs\n" +
	"`tp config` - Show the take profit configuration\n" +
	"`add <stock_symbol>` - Add a stock symbol for TP configuration\n" +
	"Example: `add AAPL.NAS` - Adds Apple stock to TP configuration"

const (
	msgInvalidConfig  = "Invalid command. Use: `config help` for available commands."
	msgInvalidMode    = "Invalid mode. Use 'fixed' or 'risk'."
	msgLimitRange     = "Number of limits must be between 1 and 8."
	msgNumberFormat   = "Invalid number format. Please use numbers for limits and values."
	msgReserved       = "Cannot delete the default configuration."
	msgTPFormat       = "Invalid TP command format. Use: `tp <symbol_type> <value>` (e.g., `tp forex 10`)"
	msgTPValue        = "Invalid value. Please use a non-negative number."
	msgAddFormat      = "Invalid add command format. Use: `add <stock_symbol>`"
	msgNoTPConfig     = "No take profit configuration found."
	msgPersistWarning = "Warning: the change is active but could not be saved: %v"
)
