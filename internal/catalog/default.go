package catalog

// defaultSource is the built-in catalog used when no catalog file exists.
// Declaration order matters: earlier entries win score ties.
const defaultSource = `{
  // File and directory operations
  "file_operations": {
    "ls -la": ["list all files", "list files", "show files", "show all files", "what files are here"],
    "pwd": ["current directory", "print working directory", "where am i"],
    "mkdir {name}": ["create folder", "make folder", "new folder", "create directory", "make directory"],
    "touch {name}": ["create file", "make file", "new file"],
    "cat {name}": ["show file", "read file", "print file"],
    "rm {name}": ["delete file", "remove file"],
    "du -sh .": ["folder size", "directory size", "how big is this folder"]
  },

  // Host and process information
  "system_info": {
    "df -h": ["disk space", "disk usage", "free disk space"],
    "free -h": ["memory usage", "show memory", "free memory"],
    "ps aux --sort=-%cpu | head -20": ["show processes", "list processes", "running processes"],
    "uptime": ["system uptime", "how long has this been running"],
    "whoami": ["who am i", "current user"],
    "date": ["current time", "what time is it", "show date"],
    "uname -a": ["kernel version", "system information"]
  },

  // Git workflow
  "git": {
    "git status": ["git status", "check git status", "show git status"],
    "git pull": ["git pull", "pull changes", "pull latest changes"],
    "git log --oneline -10": ["git log", "recent commits", "show commits"],
    "git branch": ["git branch", "list branches", "show branches"],
    "git diff": ["git diff", "show changes", "what changed"],
    "git checkout {name}": ["switch branch", "checkout branch"]
  },

  // Network checks
  "network": {
    "ping -c 4 8.8.8.8": ["ping google", "check internet", "test connection"],
    "ip addr": ["ip address", "show ip", "network interfaces"],
    "ss -tulpn": ["open ports", "listening ports"],
    "curl -s ifconfig.me": ["public ip", "external ip"]
  },

  // Terminal housekeeping
  "terminal_management": {
    "clear": ["clear screen", "clear terminal", "clear the screen"],
    "history | tail -20": ["command history", "show history", "recent commands"]
  },

  // Acknowledgement phrases that never map to a command
  "conversational": [
    "thinking", "hello", "hi", "thanks", "thank you", "okay", "ok",
    "got it", "hmm", "let me see", "let me think", "alright",
    "never mind", "nevermind", "cool", "nice", "good", "yes", "yeah"
  ]
}`

// Default builds the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultSource)
}
