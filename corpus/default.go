package corpus

// DefaultDefinition returns the built-in tables. The level weights are fixed
// because receiver test fixtures depend on them.
func DefaultDefinition() Definition {
	weights := func() map[Level]int {
		return map[Level]int{Trace: 5, Debug: 15, Info: 50, Warn: 20, Error: 8, Fatal: 2}
	}

	return Definition{
		Standard: StandardDefinition{
			Weights: weights(),
			Services: []string{
				"api-gateway",
				"user-service",
				"payment-service",
				"order-service",
				"notification-service",
			},
			Messages: map[Level][]string{
				Trace: {
					"Entering function processRequest",
					"Exiting function validateToken",
					"Variable state: initialized",
				},
				Debug: {
					"Request payload: {user_id: 123}",
					"Cache hit for key: user:123",
					"Database query executed in 15ms",
				},
				Info: {
					"Server started on port 8080",
					"User successfully authenticated",
					"Order processed successfully",
					"Payment confirmed for order #12345",
					"Email notification sent",
				},
				Warn: {
					"High memory usage detected: 85%",
					"Slow database query: 2500ms",
					"Rate limit approaching for client",
					"Deprecated API endpoint accessed",
				},
				Error: {
					"Database connection failed",
					"Failed to process payment: timeout",
					"Authentication failed: invalid token",
					"External API returned 500 error",
				},
				Fatal: {
					"Out of memory - shutting down",
					"Critical database corruption detected",
					"Unrecoverable system error",
				},
			},
		},
		Clef: ClefDefinition{
			Weights: weights(),
			SourceContexts: []string{
				"MyApp.Controllers.UserController",
				"MyApp.Services.AuthService",
				"MyApp.Data.Repository",
				"MyApp.Middleware.ErrorHandler",
				"MyApp.Jobs.BackgroundWorker",
			},
			Templates: map[Level][]Template{
				Trace: {
					{"Entering method {MethodName}", Properties{{"MethodName", "ProcessRequest"}}},
					{"Variable {VarName} = {VarValue}", Properties{{"VarName", "state"}, {"VarValue", "initialized"}}},
				},
				Debug: {
					{"Request from {ClientIp} with payload size {Size}", Properties{{"ClientIp", "192.168.1.100"}, {"Size", 1024}}},
					{"Cache {CacheResult} for key {CacheKey}", Properties{{"CacheResult", "HIT"}, {"CacheKey", "user:123"}}},
					{"Query executed in {ElapsedMs}ms", Properties{{"ElapsedMs", 15}}},
				},
				Info: {
					{"User {Username} logged in from {IpAddress}", Properties{{"Username", "john.doe"}, {"IpAddress", "10.0.0.1"}}},
					{"Order {OrderId} processed successfully", Properties{{"OrderId", "ORD-12345"}}},
					{
						"HTTP {Method} {Path} responded {StatusCode} in {ElapsedMs}ms",
						Properties{{"Method", "GET"}, {"Path", "/api/users"}, {"StatusCode", 200}, {"ElapsedMs", 45}},
					},
				},
				Warn: {
					{"Memory usage at {Percentage}%, threshold is {Threshold}%", Properties{{"Percentage", 85}, {"Threshold", 80}}},
					{"Slow query detected: {QueryTime}ms for {QueryType}", Properties{{"QueryTime", 2500}, {"QueryType", "SELECT"}}},
					{"Rate limit {Current}/{Max} for client {ClientId}", Properties{{"Current", 95}, {"Max", 100}, {"ClientId", "client-123"}}},
				},
				Error: {
					{"Failed to connect to database {DbName}: {ErrorMessage}", Properties{{"DbName", "users_db"}, {"ErrorMessage", "Connection timeout"}}},
					{"Payment failed for order {OrderId}: {Reason}", Properties{{"OrderId", "ORD-999"}, {"Reason", "Insufficient funds"}}},
					{"Authentication failed for user {Username}: {Reason}", Properties{{"Username", "admin"}, {"Reason", "Invalid token"}}},
				},
				Fatal: {
					{"Out of memory: {UsedMb}MB / {TotalMb}MB", Properties{{"UsedMb", 7800}, {"TotalMb", 8000}}},
					{"Unrecoverable error in {Component}: {Error}", Properties{{"Component", "CoreService"}, {"Error", "Stack overflow"}}},
				},
			},
			Exceptions: []string{
				"System.NullReferenceException: Object reference not set to an instance of an object\n" +
					"   at MyApp.Service.DoWork() in /src/Service.cs:line 42",
				"System.InvalidOperationException: Sequence contains no elements\n" +
					"   at System.Linq.Enumerable.First[TSource](IEnumerable`1 source)\n" +
					"   at MyApp.Repository.GetUser() in /src/Repository.cs:line 88",
				"System.TimeoutException: The operation has timed out.\n" +
					"   at MyApp.HttpClient.SendAsync() in /src/HttpClient.cs:line 156",
			},
		},
	}
}

// Default builds the built-in corpus. It panics only if the built-in tables
// are broken, which the tests guard against.
func Default() *Corpus {
	c, err := New(DefaultDefinition())
	if err != nil {
		panic("built-in corpus is invalid: " + err.Error())
	}
	return c
}
