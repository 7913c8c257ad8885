/*
Package config loads and validates the organizer configuration.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	   +---------+-----+-----+---------+
	   |         |           |         |
	+--+---+ +---+--+    +---+--+  +---+--+
	| YAML | | JSON |    | HCL  |  | TOML |
	+------+ +------+    +------+  +------+

🎯 Purpose:
- Reads the config file with the parser matching its extension
- Applies DLSORT_* environment overrides
- Expands "~", fills defaults and normalizes extensions
- Rejects configs the organizer cannot run with

🔄 Flow:
1. Parser decodes the on-disk schema into a Config
2. ApplyEnv overrides directory settings
3. Normalize fills download_dir / destination_root defaults
4. Validate checks rules, targets and the date pattern

📝 Example (YAML):

	download_dir: ~/Downloads
	destination_root: ~/Downloads/Sorted
	ignore_extensions: [".part", ".crdownload", ".tmp"]
	ignore_patterns: [".~lock.*"]
	date_subdir: "%Y-%m"
	rules:
	  - name: images
	    extensions: [jpg, png, gif]
	    target: Images
	  - name: catchall
	    extensions: ["*"]
	    target: Misc

Rules are tried in order. A file no rule matches goes to the last rule, so
configs should end with a "*" rule.
*/
package config
