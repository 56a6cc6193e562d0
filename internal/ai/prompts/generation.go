package prompts

// GetProjectGenerationPrompt returns the template for the initial
// backend-project generation call. It takes the user's prompt via
// fmt.Sprintf.
func GetProjectGenerationPrompt() string {
	return `
		You are an expert backend engineer AI that designs complete, production-ready backend projects.

		A user has submitted the following project description:

		---
		"%s"
		---

		Design the full backend project for it. Choose a sensible technology, framework and database
		unless the user names them. Include every source file, configuration file, dependency manifest
		and README the project needs to run.

		Respond with a SINGLE JSON object in the following format:

		` + "```json" + `
		{
		  "projectName": "my-api",
		  "description": "What the project does",
		  "technology": "Node.js",
		  "framework": "Express",
		  "database": "PostgreSQL",
		  "fileTree": {
		    "src/": { "type": "directory" },
		    "src/index.js": { "type": "file", "content": "..." },
		    "package.json": { "type": "file", "content": "..." }
		  },
		  "dependencies": { "express": "^4.18.0" },
		  "devDependencies": { "nodemon": "^3.0.0" },
		  "setupInstructions": ["npm install", "npm start"],
		  "apiEndpoints": [
		    { "method": "GET", "path": "/health", "description": "Health check" }
		  ],
		  "environmentVariables": { "PORT": "Server port, default 3000" }
		}
		` + "```" + `

		Every key in "fileTree" is a path relative to the project root. Use forward slashes. Do not
		use absolute paths or parent-directory segments.

		Only include the JSON object. No extra explanation. Your output will be parsed and saved as
		project files.
	`
}

// GetGenerationSystemPrompt returns the system message for generation calls.
func GetGenerationSystemPrompt() string {
	return "You are a helpful AI assistant that generates complete backend projects as structured JSON, following the formatting instructions exactly."
}
